package target

// HostBatch is every target that shares one address, in first-seen order.
type HostBatch struct {
	Address string
	Members []Target
}

// GroupByHost groups targets by address. Addresses keep the order in which
// they first appear, and so do members within a batch.
func GroupByHost(targets []Target) []HostBatch {
	index := make(map[string]int)
	var batches []HostBatch
	for _, t := range targets {
		i, ok := index[t.Address]
		if !ok {
			i = len(batches)
			index[t.Address] = i
			batches = append(batches, HostBatch{Address: t.Address})
		}
		batches[i].Members = append(batches[i].Members, t)
	}
	return batches
}
