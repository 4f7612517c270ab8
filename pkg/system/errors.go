package system

import (
	errs "github.com/matzehuels/sysbuild/pkg/errors"
)

func duplicateSystemError(name string) error {
	return errs.NewFor(errs.ErrCodeDuplicateSystem, name,
		"system %q is in the name table but not in the graph", name)
}

func wouldCycleError(name, dep string) error {
	return errs.NewFor(errs.ErrCodeWouldCycle, name,
		"system %q depending on %q would create a cycle", name, dep)
}

func missingDependentSystemError(name string) error {
	return errs.NewFor(errs.ErrCodeMissingDependentSystem, name,
		"system %q is required by another system but was never registered", name)
}

func alreadyBuiltError() error {
	return errs.New(errs.ErrCodeAlreadyBuilt, "builder has already been built")
}

// IsDuplicateSystem reports whether err signals an inconsistent name table.
func IsDuplicateSystem(err error) bool { return errs.Is(err, errs.ErrCodeDuplicateSystem) }

// IsWouldCycle reports whether err is a rejected cyclic dependency.
func IsWouldCycle(err error) bool { return errs.Is(err, errs.ErrCodeWouldCycle) }

// IsMissingDependentSystem reports whether err comes from a placeholder that
// was never replaced by a real system.
func IsMissingDependentSystem(err error) bool {
	return errs.Is(err, errs.ErrCodeMissingDependentSystem)
}

// IsAlreadyBuilt reports whether err comes from using a consumed Builder.
func IsAlreadyBuilt(err error) bool { return errs.Is(err, errs.ErrCodeAlreadyBuilt) }

// MissingSystem returns the name of the unregistered system behind a
// MISSING_DEPENDENT_SYSTEM error.
func MissingSystem(err error) (string, bool) {
	if !IsMissingDependentSystem(err) {
		return "", false
	}
	return errs.SubjectOf(err), true
}
