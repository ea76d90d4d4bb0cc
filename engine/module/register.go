package module

import "github.com/fallout-harness/fallout/engine"

// Register adds every built-in module factory to r under its registered
// short name (§4.F).
func Register(r *engine.Registry) {
	r.RegisterModule("sleep0", func() engine.Module { return Sleep0{} })
	r.RegisterModule("phase_lifetime_sleep", func() engine.Module { return PhaseLifetimeSleep{} })
	r.RegisterModule("phase_lifetime_sleep_in_subphase", func() engine.Module { return PhaseLifetimeSleepInSubphase{} })
	r.RegisterModule("text1", func() engine.Module { return Text{} })
	r.RegisterModule("text2", func() engine.Module { return Text{} })
	r.RegisterModule("chatprobe", func() engine.Module { return ChatProbe{} })
	r.RegisterModule("dbwriter", func() engine.Module { return DBWriter{} })
}
