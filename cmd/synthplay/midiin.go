package main

import (
	"fmt"
	"strconv"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cwbudde/algo-synth/internal/engine"
)

func listPorts(drv *rtmididrv.Driver) error {
	ins, err := drv.Ins()
	if err != nil {
		return err
	}
	if len(ins) == 0 {
		fmt.Println("no MIDI inputs found")
		return nil
	}
	for _, in := range ins {
		fmt.Printf("%d\t%s\n", in.Number(), in.String())
	}
	return nil
}

// findPort resolves a port by number or exact name.
func findPort(drv *rtmididrv.Driver, name string) (drivers.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	num, numErr := strconv.Atoi(name)
	for _, in := range ins {
		if in.String() == name || (numErr == nil && in.Number() == num) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("MIDI input %q not found", name)
}

// listen feeds messages from in to eng until stop is called. A listener
// error means the device went away; every held note is released so nothing
// hangs.
func listen(in drivers.In, eng *engine.Engine) (stop func(), err error) {
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open MIDI port %q: %w", in.String(), err)
	}
	stop, err = midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		ok, err := eng.HandleMessage(msg)
		switch {
		case err != nil:
			logger.Warn("MIDI event dropped", "msg", msg.String(), "err", err)
		case ok:
			logger.Debug("MIDI event", "msg", msg.String(), "ts_ms", timestampms)
		}
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error, device likely disconnected", "device", in.String(), "err", listenErr)
		_ = eng.AllNotesOff()
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen on %q: %w", in.String(), err)
	}
	logger.Info("MIDI input connected", "device", in.String())
	return stop, nil
}
