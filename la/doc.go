// Package la holds the insertion capability through which assembly writes into caller-owned
// matrix storage, and a few concrete targets for it.
//
// Assembly never reads a target. It calls MatSet.Add once per mesh entity with the
// block-unrolled local row and column indices of that entity and a row-major value block,
// and MatSet.Set once per row when re-inserting diagonal values.
//
// Concurrency: DenseMatrix, SparseMatrix and Triplet are not safe for concurrent use.
// Wrap a target in Locked when several goroutines insert into it.
package la
