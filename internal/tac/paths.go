package tac

import "strconv"

// Path keys use a stable string scheme: "i" for a root
// child, "p.j" for the j-th alternative of a one-of at path p, "p.s.k" for
// the k-th element of a sequence body at path p, and "p.seq" for the
// sequence cursor of the sequence at path p. Flat string keys are simple and
// robust against structural sharing of the Grammar tree across Engine
// instances, at the cost of string-building on every traversal step; see
// DESIGN.md for why that tradeoff was kept instead of integer-tuple paths.

func rootPath(i int) string {
	return strconv.Itoa(i)
}

func altPath(parent string, j int) string {
	return parent + "." + strconv.Itoa(j)
}

func seqElemPath(parent string, k int) string {
	return parent + ".s." + strconv.Itoa(k)
}

func seqCursorPath(parent string) string {
	return parent + ".seq"
}
