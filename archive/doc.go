// Package archive drives a class transformer over the entries of a JAR.
//
// Process transforms class entries in parallel on a bounded errgroup and
// reassembles them in input order. Non-class entries are passed through
// with their bytes untouched. Any single failure aborts the pass and no
// output is produced.
//
//	t := widener.NewTransformer(rules)
//	report, err := archive.TransformJar(ctx, "in.jar", "out.jar", t,
//	    archive.WithParallelism(8))
//
// TransformJar writes to a temporary file next to the destination and
// renames it into place on success.
//
// Fingerprint and HashEntry are keyed BLAKE3 digests used to summarize a
// pass. They cover names, order and content but not timestamps.
package archive
