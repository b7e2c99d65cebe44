// Package spmv benchmarks sparse matrix × dense vector multiplication.
//
// A run loads a Matrix Market file into a bump arena, converts it from
// coordinate to compressed row form, fills a random input vector and times
// the row-parallel multiply:
//
//	report, err := spmv.Run(ctx, "matrix.mtx",
//	    spmv.WithThreads(8),
//	    spmv.WithPolicy(spmv.DynamicPolicy(32)),
//	    spmv.WithRuns(20),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Mean, report.StdDev)
//
// # Reports
//
// A Report carries the samples and their statistics in microseconds together
// with a description of the matrix and the host. Publish encodes it once and
// writes it to any number of blobstore sinks:
//
//	err = spmv.Publish(ctx, report, codec.Default, blobstore.NewLocalStore("results"))
//
// # Errors
//
// Failures are classified by kind. Use errors.Is with the exported sentinels:
//
//	if errors.Is(err, spmv.ErrInvalidFileFormat) { ... }
//
// The message of the most recent failed Run is kept for callers that only
// report an exit status; see LastErrorDetail.
package spmv
