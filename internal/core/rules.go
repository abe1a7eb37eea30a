package core

// Mutation is one balance write to be applied atomically by a BalanceStore.
// Delta is signed. RequireAvailable, when > 0, makes the mutation fail with
// InsufficientStockError unless the balance's available quantity (full −
// reserved) covers it at the moment the row lock is held — this is how a
// transfer's availability check stays race-free with concurrent writers.
type Mutation struct {
	Key              BalanceKey
	Dimension        Dimension
	Delta            int64
	RequireAvailable int64
	Reason           string
}

// applyMutation computes the quantity triple that results from applying m to
// the current quantities, together with the delta actually applied.
//
// Policy (run inside the store's atomic section, never outside it):
//   - full/empty decrements clamp at zero; the applied delta is recorded in
//     the audit row so clamping stays observable.
//   - reserved changes are strict: a result below zero or above qty_full is
//     rejected outright, because clamping a reservation would silently
//     misstate a commitment.
func applyMutation(q Quantities, m Mutation) (Quantities, int64, error) {
	if !m.Dimension.Valid() {
		return q, 0, validationf("unknown dimension %q", m.Dimension)
	}
	if m.RequireAvailable > 0 && q.Available() < m.RequireAvailable {
		return q, 0, &InsufficientStockError{
			WarehouseID: m.Key.WarehouseID,
			ProductID:   m.Key.ProductID,
			Requested:   m.RequireAvailable,
			Available:   q.Available(),
		}
	}

	out := q
	switch m.Dimension {
	case DimensionFull:
		nv := q.Full + m.Delta
		if nv < 0 {
			nv = 0
		}
		out.Full = nv
		return out, nv - q.Full, nil
	case DimensionEmpty:
		nv := q.Empty + m.Delta
		if nv < 0 {
			nv = 0
		}
		out.Empty = nv
		return out, nv - q.Empty, nil
	default: // DimensionReserved
		nv := q.Reserved + m.Delta
		if nv < 0 {
			return q, 0, validationf("reservation cannot go below zero: current %d, delta %d", q.Reserved, m.Delta)
		}
		if nv > q.Full {
			return q, 0, validationf("reservation %d would exceed full stock %d", nv, q.Full)
		}
		out.Reserved = nv
		return out, m.Delta, nil
	}
}
