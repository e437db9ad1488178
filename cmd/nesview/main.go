// Command nesview is a minimal SDL2 front end for the nes package: it
// loads a ROM, runs the console one frame at a time, and blits the PPU's
// framebuffer into a window. It does not attempt a multi-window debugger
// UI (pattern/nametable viewers, audio) — see DESIGN.md for why that
// scope was dropped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/flga/nes/internal/input"
	"github.com/flga/nes/internal/meter"
	"github.com/flga/nes/internal/romfile"
	"github.com/flga/nes/nes"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	screenW = 256
	screenH = 240
)

func init() {
	runtime.LockOSThread()
}

func initSDL() (func(), error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return func() {}, fmt.Errorf("initSDL: %s", err)
	}
	return sdl.Quit, nil
}

func run(romPath string, scale int, trace bool, cpuprof, memprof string) error {
	if cpuprof != "" {
		f, err := os.Create(cpuprof)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %s", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %s", err)
		}
		defer pprof.StopCPUProfile()
	}
	if memprof != "" {
		f, err := os.Create(memprof)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %s", err)
		}
		defer func() {
			runtime.GC()
			pprof.WriteHeapProfile(f)
			f.Close()
		}()
	}

	cart, err := romfile.Load(romPath)
	if err != nil {
		return err
	}

	var traceOut *os.File
	if trace {
		traceOut = os.Stderr
	}
	var console *nes.Console
	if traceOut != nil {
		console = nes.NewConsole(cart, 0, traceOut)
	} else {
		console = nes.NewConsole(cart, 0, nil)
	}

	quitSDL, err := initSDL()
	if err != nil {
		return err
	}
	defer quitSDL()

	window, err := sdl.CreateWindow(
		"nesview",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(screenW*scale), int32(screenH*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return fmt.Errorf("could not create window: %s", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("could not create renderer: %s", err)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING, screenW, screenH)
	if err != nil {
		return fmt.Errorf("could not create texture: %s", err)
	}
	defer texture.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigchan
		cancel()
	}()

	fps := meter.New(30)
	paused := false
	frameStart := time.Now()
	frameCount := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
			if _, ok := evt.(*sdl.QuitEvent); ok {
				return nil
			}
			if kb, ok := evt.(*sdl.KeyboardEvent); ok && kb.Type == sdl.KEYDOWN && kb.Keysym.Sym == sdl.K_SPACE {
				paused = !paused
				continue
			}
			input.Handle(evt, console, 0)
		}

		if !paused {
			if err := console.StepFrame(); err != nil {
				return fmt.Errorf("console: %s", err)
			}
		}

		rgba := nes.FramebufferToRGBA(console.PPU.Framebuffer())
		if err := texture.Update(nil, rgba, screenW*4); err != nil {
			return fmt.Errorf("could not update texture: %s", err)
		}

		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		fps.Record(time.Since(frameStart))
		frameStart = time.Now()

		// The window title is the only HUD this front end has; refresh it
		// every 30 frames rather than every frame.
		frameCount++
		if frameCount%30 == 0 {
			window.SetTitle(fmt.Sprintf("nesview - %d fps (%.1fms)", fps.Tps(), fps.Ms()))
		}
	}
}

func main() {
	scale := flag.Int("scale", 3, "window scale factor")
	trace := flag.Bool("trace", false, "write a nestest-format CPU trace to stderr")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile := flag.String("memprofile", "", "write memory profile to file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: nesview [flags] <rom.nes>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *scale, *trace, *cpuprofile, *memprofile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
