package importers

// Progress accumulates what one batch or pass did. It is updated once per
// item and never inferred from the destination.
type Progress struct {
	Items   int64 `json:"items"`
	Bytes   int64 `json:"bytes"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

// Imported records one successfully written item of n bytes.
func (p *Progress) Imported(n int64) {
	p.Items++
	p.Bytes += n
}

// Skip records an item that was already present or is unsupported.
func (p *Progress) Skip() {
	p.Skipped++
}

// Fail records an item that could not be written.
func (p *Progress) Fail() {
	p.Failed++
}

// budget decides when a batch has to yield. A batch stops before the first
// download that follows the one that pushed it past its limit, so the
// bytes written are the smallest prefix exceeding the budget.
type budget struct {
	limit    int64
	progress *Progress
}

// exhausted reports whether another download must wait for the next batch.
func (b budget) exhausted() bool {
	return b.limit > 0 && b.progress.Bytes > b.limit
}
