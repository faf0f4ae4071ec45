// Package pagination provides parallel batch fetching of feed pages.
//
// A deep link such as "?page=4" is resumed by fetching pages 1..4 at once.
// The requests carry no ordering dependency on each other; only the merge
// step after the join imposes page order.
//
// Example usage:
//
//	fetcher := pagination.NewBatchFetcher(feedClient, pagination.DefaultConfig())
//	results, err := fetcher.FetchRange(ctx, 1, 4)
//
// The batch fetcher:
//   - Spawns a bounded worker pool (default 10 workers)
//   - Returns results in request order regardless of completion order
//   - Cancels outstanding requests on the first failure
//   - Returns no partial data: a batch succeeds or fails as a whole
package pagination
