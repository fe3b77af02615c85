// Package parser turns free-text (typed or transcribed voice) utterances into
// expense and trip-request drafts without any remote service.
//
// It is the local half of the extraction chain: ordered regular expressions
// pull amounts and description fragments, and a keyword table scores the
// expense category. Everything here is pure and safe for concurrent use.
package parser
