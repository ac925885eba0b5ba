// Package trust implements the standalone player trust scoring model:
// a time-decayed weighted aggregation of feedback events with a
// Bayesian-shrinkage prior and bucket classification. It exposes
// [Compute], [FeedbackEvent], [Result], and [ModelVersion].
package trust
