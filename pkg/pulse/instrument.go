package pulse

// Instrumentation receives hook calls for engine activity. Implementations
// must be cheap and must not touch reactive state: hooks fire while the
// engine is mid-propagation.
//
// Node names are the WithName / EffectName values and may be empty.
type Instrumentation interface {
	// SignalWrite fires after a signal stores a changed value.
	SignalWrite(name string)

	// MemoRecompute fires after a memo recomputes, successfully or not.
	MemoRecompute(name string)

	// EffectRun fires after an effect body runs.
	EffectRun(name string)

	// BatchStart and BatchEnd bracket a named transaction (TxNamed).
	BatchStart(name string)
	BatchEnd(name string)

	// FlushStart and FlushEnd bracket a flush. passes counts queue
	// drains, effectsRun the effects actually executed.
	FlushStart()
	FlushEnd(passes, effectsRun int)
}

// nopInstrumentation is the default hook set.
type nopInstrumentation struct{}

func (nopInstrumentation) SignalWrite(string)   {}
func (nopInstrumentation) MemoRecompute(string) {}
func (nopInstrumentation) EffectRun(string)     {}
func (nopInstrumentation) BatchStart(string)    {}
func (nopInstrumentation) BatchEnd(string)      {}
func (nopInstrumentation) FlushStart()          {}
func (nopInstrumentation) FlushEnd(int, int)    {}
