package export

// State is the export driver's lifecycle phase.
type State int

const (
	Idle State = iota
	Preparing
	Exporting
	Finalizing
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case Exporting:
		return "exporting"
	case Finalizing:
		return "finalizing"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// SeekResult reports how a bounded seek wait ended. Both outcomes proceed to
// frame processing; the timeout only prevents a permanent stall on decoders
// that never signal completion.
type SeekResult int

const (
	SeekConfirmed SeekResult = iota
	SeekTimedOut
)

func (r SeekResult) String() string {
	if r == SeekTimedOut {
		return "timed out"
	}
	return "confirmed"
}
