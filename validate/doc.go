// Package validate checks filter trees against field metadata.
//
// Leaf and Tree return errors for leaves whose values do not fit their
// operator or field. Validators wrap the same checks, and others, as named
// reports of violations that a caller can look up by id.
package validate
