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

package pkg

// MatchFlags relax capability matching.
type MatchFlags uint8

const (
	// PromoteVersion lets an unversioned or release-less provided
	// capability satisfy a versioned requirement.
	PromoteVersion MatchFlags = 1 << iota
	// PromoteReqEpoch ignores the epoch when the requirement has none.
	PromoteReqEpoch
	// PromoteCapEpoch ignores the epoch when the provided capability has none.
	PromoteCapEpoch
)

// PromoteEpoch is the epoch wildcard on both sides.
const PromoteEpoch = PromoteReqEpoch | PromoteCapEpoch

// CapMatchReq tells whether the provided capability c satisfies req.
//
// Names must be equal. An unversioned requirement is satisfied by name. When
// either side carries an epoch, a side without one counts as epoch 0 unless
// the matching promote flag is set, in which case the epoch does not take
// part in the comparison. Version and release follow, a missing one on the
// provided side only satisfying the requirement under PromoteVersion.
func CapMatchReq(c, req *Capability, flags MatchFlags) bool {
	if c.Name != req.Name {
		return false
	}
	if !req.IsVersioned() {
		return true
	}

	cmp := 0
	compared := false

	if c.HasEpoch || req.HasEpoch {
		switch {
		case !req.HasEpoch && flags&PromoteReqEpoch != 0:
		case !c.HasEpoch && flags&PromoteCapEpoch != 0:
		default:
			cmp = sign(int(c.Epoch) - int(req.Epoch))
			if cmp != 0 {
				return req.Relation.Matches(cmp)
			}
		}
		compared = true
	}

	if req.Version != "" {
		if c.Version == "" {
			return flags&PromoteVersion != 0
		}
		if cmp = VersionCompare(c.Version, req.Version); cmp != 0 {
			return req.Relation.Matches(cmp)
		}
		compared = true
	}

	if req.Release != "" {
		if c.Release == "" {
			return flags&PromoteVersion != 0
		}
		if cmp = VersionCompare(c.Release, req.Release); cmp != 0 {
			return req.Relation.Matches(cmp)
		}
		compared = true
	}

	if compared {
		return req.Relation.Matches(cmp)
	}
	return true
}

func sign(i int) int {
	switch {
	case i > 0:
		return 1
	case i < 0:
		return -1
	}
	return 0
}
