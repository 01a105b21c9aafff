package genome

import "fmt"

// DomainError reports a gene allele outside its declared domain or a
// structural violation such as duplicate ids. It is returned at construction
// and validation time; a genome that validates cleanly stays valid because
// evolution only produces new genomes through the same constructors.
type DomainError struct {
	GeneID string
	Reason string
}

func (e *DomainError) Error() string {
	if e.GeneID != "" {
		return fmt.Sprintf("genome domain violation on gene %q: %s", e.GeneID, e.Reason)
	}
	return fmt.Sprintf("genome domain violation: %s", e.Reason)
}

// SchemaError reports an attempt to breed genomes whose chromosome/gene id
// sets do not match.
type SchemaError struct {
	GenomeA string
	GenomeB string
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch between genomes %s and %s: %s", e.GenomeA, e.GenomeB, e.Reason)
}
