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

/*
Solver computes package transactions: what to install, upgrade, downgrade
or remove so that a requested set of packages ends up installed with every
requirement satisfied and no conflict left.

It works over two collections of packages:
 - the Pool of available packages, loaded from repository indexes, where a
   package is known by its position (ID);
 - the InstalledDB, where a package is known by its record number (RecNo).

To install "packageA", we:

 1. Preinstall: turn the request into installable pool packages. Duplicates
 of a name are dropped, newest first, and capability requests are mapped to
 a provider. Packages already installed at an equal or newer version are
 skipped.

 2. Mark the requested packages on the install set and process each as NEW,
 depth first, on an explicit work stack:
 - installed packages it replaces go to the uninstall set, and installed
   packages left with unsatisfied requirements (orphans) get them resolved
   again, possibly by upgrading the orphan itself (greedy mode);
 - every requirement not satisfied by the installed database or the install
   set marks the best scoring provider, which is processed the same way;
 - conflicts with the install set are reported, conflicts with installed
   packages are resolved by upgrading them when a newer version drops the
   conflict.

 3. When a requirement had several candidates (a crossroad) and the chosen
 one fails, everything it marked is rolled back and another candidate is
 tried.

 4. Count the errors left, by class. Unresolved dependencies are forgiven by
 NoDeps, conflicts by Force. The install set, in install order, and the
 uninstall set form the result.

This is a greedy resolver with local backtracking, not a SAT solver: it
finds the transaction a packager would expect, not a global optimum.
*/
package solver
