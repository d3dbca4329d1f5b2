/*
Copyright SUSE LLC.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package solver

// rollback undoes what processing n did, then the same for everything it
// pulled in: its mark, the removals it caused and the errors it raised. Hand-marked packages stay. Black marks survive so the
// next attempt picks another candidate.
func (t *Transaction) rollback(n *node) {
	stack := []*node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p := cur.pkg

		if t.isHandMarked(p) {
			continue
		}
		t.logger.Debugf("- rollbacking %s", p)
		if t.isMarked(p) {
			if t.inset.Mark(p)&MarkInternal != 0 {
				// requested by the user, it gets processed on its own turn
				t.hand[p.ID] = true
			}
			t.inset.Remove(p)
		}
		t.forgetErrors(p)
		for _, e := range cur.errs {
			t.errs.drop(e)
		}
		cur.errs = nil

		for _, dbpkg := range cur.obsoletedBy {
			t.logger.Debugf(" - unmark obsoleted %s", dbpkg)
			t.rmset.Remove(dbpkg)
			t.forgetErrors(dbpkg)
		}
		cur.obsoletedBy = nil
		t.setState(p, Unvisited)

		// children in reverse so they unwind in marking order
		for i := len(cur.markedBy) - 1; i >= 0; i-- {
			stack = append(stack, cur.markedBy[i])
		}
		cur.markedBy = nil
	}
}
