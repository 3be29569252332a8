// Package progress provides progress reporting for object fetches.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalObjects: len(tasks),
//	    TotalSize:    plan.TotalSize,
//	    Workers:      4,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	reporter.ObjectStarted()
//	reporter.ObjectCompleted("out/s1/bam/x.bam", size)
//
// # Output Format
//
//	[pull] Downloading 3 objects (1.2 GB) with 4 workers
//	[pull] (1/3) out/s1/bam/x.bam
//	[pull] (2/3) FAILED gs://bkt/y.bam: storage.fetch gs://bkt/y.bam: ...
//	[pull] (3/3) out/s2/reads/0/a.fq
//	[pull] Done: 2 succeeded, 1 failed of 3 | 800 MB in 41s | Average speed: 19 MB/s
package progress
