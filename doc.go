// Package blobbatch uploads batches of blobs to S3-compatible object storage.
//
// A batch is written in rounds. Each round dispatches one concurrent write per
// pending blob and collects the outcomes in completion order; only the blobs
// whose write failed are carried into the next round. After the attempt
// ceiling (3 rounds by default) the call fails with an error satisfying
// errors.IsRetryExhausted, and the returned BatchResult lists the blobs that
// were never confirmed written.
//
// Writes are idempotent overwrites keyed by object path, so re-sending a blob
// whose earlier write actually landed is harmless.
//
// Example usage:
//
//	client, err := blobbatch.New(
//	    blobbatch.WithRegion("us-west-1"),
//	    blobbatch.WithDefaultBucket("rust-docs-rs"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	result, err := client.UploadBatch(ctx, "", []blobtypes.Blob{
//	    {Path: "crates/serde.json", Mime: "application/json", Content: data},
//	})
//	if errors.IsRetryExhausted(err) {
//	    for _, blob := range result.Remaining {
//	        log.Printf("not uploaded: %s", blob.Path)
//	    }
//	}
package blobbatch
