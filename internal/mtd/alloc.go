package mtd

// pickEraseBlock implements the round-robin, free-preferring erase-block
// allocation policy (spec.md §4.2.3 / §9 "Round-robin allocator"): the
// earliest block (scanning from the just-advanced round-robin pointer,
// wrapping around) that is entirely free is preferred with an early
// exit; failing that, the block with the strictly highest free-sector
// count anywhere in the image is chosen. This exact tie-breaking order
// must be preserved to reproduce byte-for-byte identical images.
func (m *MTD) pickEraseBlock() (int, error) {
	m.lastAllocBlock = (m.lastAllocBlock + 1) % m.NEraseBlocks

	for i := 0; i < m.NEraseBlocks; i++ {
		b := (m.lastAllocBlock + i) % m.NEraseBlocks
		if m.freeCount(b) == m.SectorsPerEB {
			return b, nil
		}
	}

	best := -1
	bestFree := 0
	for b := 0; b < m.NEraseBlocks; b++ {
		free := m.freeCount(b)
		if free > 0 && free > bestFree {
			best = b
			bestFree = free
		}
	}
	if best == -1 {
		return 0, ErrInvariant
	}
	return best, nil
}

// freeCount returns the number of free physical sectors in erase block b.
func (m *MTD) freeCount(b int) int {
	n := 0
	for _, free := range m.freeSectorMap[b] {
		if free {
			n++
		}
	}
	return n
}

// lowestFreeInBlock returns the lowest-index free sector within erase
// block b, or -1 if none.
func (m *MTD) lowestFreeInBlock(b int) int {
	for i, free := range m.freeSectorMap[b] {
		if free {
			return i
		}
	}
	return -1
}
