package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"quarkxr/xr"
	"quarkxr/xr/sim"
)

func main() {
	var (
		inPath   = flag.String("in", "", "Input pose script (inspect mode).")
		outPath  = flag.String("out", "", "Output pose script (generate mode, - for stdout).")
		mode     = flag.String("mode", "generate", "generate|inspect.")
		name     = flag.String("name", "motion", "Script name (generate mode).")
		duration = flag.Duration("duration", 4*time.Second, "Length of the generated script.")
		step     = flag.Duration("step", 250*time.Millisecond, "Keyframe spacing (generate) or sample spacing (inspect).")
		loop     = flag.Bool("loop", true, "Mark the generated script as looping.")
	)
	flag.Parse()

	switch strings.ToLower(*mode) {
	case "generate":
		if *outPath == "" {
			fatalf("usage: mkposes -mode generate -out poses.yaml [-duration 4s] [-step 250ms] [-name motion] [-loop]")
		}
		s, err := generate(*name, *duration, *step, *loop)
		if err != nil {
			fatalf("generate: %v", err)
		}
		if err := writeScript(*outPath, s); err != nil {
			fatalf("generate: %v", err)
		}
	case "inspect":
		if *inPath == "" {
			fatalf("usage: mkposes -mode inspect -in poses.yaml [-step 250ms]")
		}
		s, err := sim.LoadScript(*inPath)
		if err != nil {
			fatalf("inspect: %v", err)
		}
		bw := bufio.NewWriter(os.Stdout)
		defer bw.Flush()
		if err := inspect(bw, s, *step); err != nil {
			fatalf("inspect: %v", err)
		}
	default:
		fatalf("unknown mode: %s", *mode)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

// generate samples the built-in motion into a keyframed script.
func generate(name string, duration, step time.Duration, loop bool) (*sim.Script, error) {
	if step <= 0 || duration < step {
		return nil, fmt.Errorf("step %s out of range for duration %s", step, duration)
	}
	rt, err := sim.New(sim.DefaultConfig())
	if err != nil {
		return nil, err
	}
	rt.Begin()
	m := sim.NewMotion(rt, sim.DefaultMotion())
	ctx := context.Background()

	s := &sim.Script{Name: name, Loop: loop}
	for t := time.Duration(0); t <= duration; t += step {
		fs := rt.Step()
		fs.PredictedDisplayTime = xr.Time(t)

		kf := sim.Keyframe{T: t}
		for _, h := range xr.Hands {
			p, err := m.GripPose(ctx, rt.Instance(), rt.Session(), fs, rt.Input(), h)
			if err != nil {
				return nil, fmt.Errorf("%s hand at %s: %w", h, t, err)
			}
			if h == xr.HandLeft {
				kf.Left = sim.SpecFromPose(p)
			} else {
				kf.Right = sim.SpecFromPose(p)
			}
		}
		head, err := m.ViewPose(ctx, rt.Instance(), rt.Session(), fs, xr.ViewHead)
		if err != nil {
			return nil, fmt.Errorf("head at %s: %w", t, err)
		}
		kf.Head = sim.SpecFromPose(head)
		s.Keyframes = append(s.Keyframes, kf)
	}
	return s, nil
}

func writeScript(path string, s *sim.Script) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// inspect prints a summary of s followed by device positions sampled every step.
func inspect(w io.Writer, s *sim.Script, step time.Duration) error {
	if step <= 0 {
		return fmt.Errorf("invalid step: %s", step)
	}
	fmt.Fprintf(w, "name: %s\nloop: %v\nduration: %s\nkeyframes: %d\n\n", s.Name, s.Loop, s.Duration(), len(s.Keyframes))
	fmt.Fprintf(w, "%-10s %-24s %-24s %-24s\n", "t", sim.DeviceLeft, sim.DeviceRight, sim.DeviceHead)
	for t := time.Duration(0); t <= s.Duration(); t += step {
		fmt.Fprintf(w, "%-10s", t)
		for _, d := range []string{sim.DeviceLeft, sim.DeviceRight, sim.DeviceHead} {
			p, _, ok := s.Sample(d, t)
			fmt.Fprintf(w, " %-24s", formatPos(p, ok))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func formatPos(p r3.Vec, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
}
