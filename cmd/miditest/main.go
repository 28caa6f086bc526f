package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"video-instrument/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "detect":
		detectLaunchpad()
	case "monitor":
		monitor()
	case "cues":
		if len(os.Args) < 3 {
			usage()
			return
		}
		printCues(os.Args[2])
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list        - List all MIDI ports")
	fmt.Println("  detect      - Find Launchpad X")
	fmt.Println("  monitor     - Print normalized events from every input")
	fmt.Println("  cues <file> - Print the normalized events of a MIDI file")
	fmt.Println("  poll        - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func detectLaunchpad() {
	fmt.Println("Looking for Launchpad X...")

	ins := gomidi.GetInPorts()
	outs := gomidi.GetOutPorts()

	var inIdx, outIdx = -1, -1

	for i, p := range ins {
		name := strings.ToLower(p.String())
		if strings.Contains(name, "launchpad") && strings.Contains(name, "midi") {
			fmt.Printf("Found input: %d: %s\n", i, p.String())
			inIdx = i
		}
	}

	for i, p := range outs {
		name := strings.ToLower(p.String())
		if strings.Contains(name, "launchpad") && strings.Contains(name, "midi") {
			fmt.Printf("Found output: %d: %s\n", i, p.String())
			outIdx = i
		}
	}

	if inIdx >= 0 && outIdx >= 0 {
		fmt.Println("\nLaunchpad X detected!")
	} else {
		fmt.Println("\nLaunchpad X not found")
	}
}

func monitor() {
	fmt.Println("Monitoring every input port. Ctrl+C to exit.")

	in := midi.NewInput(0)
	var stops []func()
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), "through") {
			continue
		}
		stop, err := gomidi.ListenTo(p, func(msg gomidi.Message, timestampms int32) {
			in.Deliver(msg.Bytes(), time.Now())
		})
		if err != nil {
			fmt.Printf("  %s: %v\n", p.String(), err)
			continue
		}
		fmt.Printf("  listening on %s\n", p.String())
		stops = append(stops, stop)
	}
	if len(stops) == 0 {
		fmt.Println("No input ports")
		return
	}
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	var anomalies uint64
	clock := 0
	for {
		select {
		case <-sig:
			fmt.Printf("\nanomalies %d  ignored %d  dropped %d\n", in.Anomalies(), in.Ignored(), in.Dropped())
			return
		case ev := <-in.Events():
			// 24 pulses per beat; print one line per beat
			if ev.Kind == midi.ClockTick {
				clock++
				if clock%midi.PulsesPerQuarter != 0 {
					continue
				}
			}
			fmt.Printf("[%s] %s\n", ev.Time.Format("15:04:05.000"), ev)
		case <-in.Overflow():
			for _, ev := range in.Drain() {
				fmt.Printf("[%s] %s (late)\n", ev.Time.Format("15:04:05.000"), ev)
			}
		}
		if a := in.Anomalies(); a != anomalies {
			fmt.Printf("  ! %d malformed messages\n", a-anomalies)
			anomalies = a
		}
	}
}

func printCues(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer f.Close()

	cues, err := midi.ReadCues(f)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	norm := midi.NewNormalizer()
	start := time.Time{}
	for _, c := range cues {
		ev, ok := norm.Normalize(c.Data, start.Add(c.Offset))
		if !ok {
			continue
		}
		fmt.Printf("%10s  %s\n", c.Offset.Round(time.Millisecond), ev)
	}
	fmt.Printf("\n%d cues, %d anomalies, %d ignored\n", len(cues), norm.Anomalies(), norm.Ignored())
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect Launchpad to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()

		// Build current state
		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			// Check for Launchpad
			for _, name := range inNames {
				if strings.Contains(strings.ToLower(name), "launchpad") {
					fmt.Println("  -> Launchpad detected!")
				}
			}

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
