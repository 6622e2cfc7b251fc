// Package dataset loads mammal sleep observations and prepares the model frame.
//
// The built-in table (MSleep) holds 83 species with total sleep, REM sleep, sleep
// cycle length, hours awake, brain mass and body mass. Optional measurements are
// carried as NullFloat so a missing brain mass is explicit rather than a magic
// number.
//
// Prepare turns observations into a Frame, the immutable input of the model:
//
//	obs, err := dataset.MSleep()
//	if err != nil {
//	    return err
//	}
//	frame, err := dataset.Prepare(obs)
//	if err != nil {
//	    return err
//	}
//	x := frame.Column(dataset.ColLogBrainWt)
//	y := frame.Column(dataset.ColLogitSleepRatio)
//
// Rows without a brain mass are dropped silently (they are counted in the
// PrepareReport). Rows whose values would make a log or logit undefined are
// excluded too, but they produce report warnings the caller is expected to log.
package dataset
