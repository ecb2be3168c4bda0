// Package translate drives batched subtitle translation through a text
// generation provider.
//
// Lines are sent in fixed-size batches, extended past continuation markers so
// a hard-split sentence is never divided across requests. Each batch carries a
// fixed context prompt, the tail of previous translations for continuity, and
// a lookahead of upcoming source lines that is discarded from the reply.
// Replies are validated for exact line count, with corrective re-prompts and a
// deterministic force-fit fallback, so the output always has one translated
// string per source line. The running result is persisted after every batch
// and an existing partial file resumes the run at its line count.
package translate
