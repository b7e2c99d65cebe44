// Package history keeps a local sqlite log of benchmark runs so results can be
// compared over time.
//
//	h, err := history.Open("runs.db")
//	defer h.Close()
//	err = h.Append(ctx, rec)
//	recent, err := h.List(ctx, history.Query{Fingerprint: fp, Limit: 10})
package history
