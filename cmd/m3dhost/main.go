// Command m3dhost drives a single-extruder desktop 3D printer: it
// pre-processes a G-code file through the validation/bonding/compensation
// pipeline, streams it to the printer (or a translator device), and can
// flash encrypted firmware images.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/printcraft/m3dhost/executor"
	"github.com/printcraft/m3dhost/firmware"
	"github.com/printcraft/m3dhost/geom"
	"github.com/printcraft/m3dhost/internal/applog"
	"github.com/printcraft/m3dhost/internal/config"
	"github.com/printcraft/m3dhost/pipeline"
	"github.com/printcraft/m3dhost/serial"
	"github.com/printcraft/m3dhost/session"
	"github.com/printcraft/m3dhost/translator"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(0)
	}
}

func run(args []string) error {
	toolCfg, err := config.LoadToolConfig()
	if err != nil {
		return fmt.Errorf("m3dhost: load tool config: %w", err)
	}

	fs := flag.NewFlagSet("m3dhost", flag.ContinueOnError)

	var (
		validation  bool
		preparation bool
		wavebonding bool
		thermalbond bool
		bedcomp     bool
		backlashcmp bool
		feedrate    bool

		firmwareROM string
		forceFlash  bool
		inputFile   string
		outputFile  string
		translate   bool
		settings    bool
		provided    string
		monitor     bool

		backlashX, backlashY, backlashSpeed       float64
		filamentType, filamentTemperature         int
		backLeftOffset, backRightOffset           float64
		frontLeftOffset, frontRightOffset         float64
	)

	boolFlag := func(p *bool, short, long string, def bool, usage string) {
		fs.BoolVar(p, short, def, usage)
		fs.BoolVar(p, long, def, usage)
	}
	stringFlag := func(p *string, short, long, def, usage string) {
		fs.StringVar(p, short, def, usage)
		fs.StringVar(p, long, def, usage)
	}

	boolFlag(&validation, "v", "validation", toolCfg.Stages.Validation, "run the validation stage")
	boolFlag(&preparation, "p", "preparation", toolCfg.Stages.Preparation, "run the preparation stage")
	boolFlag(&wavebonding, "w", "wavebonding", toolCfg.Stages.Wavebonding, "run the wave-bonding stage")
	boolFlag(&thermalbond, "t", "thermalbonding", toolCfg.Stages.Thermalbonding, "run the thermal-bonding stage")
	boolFlag(&bedcomp, "b", "bedcompensation", toolCfg.Stages.Bedcompensation, "run the bed-compensation stage")
	boolFlag(&backlashcmp, "l", "backlashcompensation", toolCfg.Stages.Backlashcompensation, "run the backlash-compensation stage")
	boolFlag(&feedrate, "f", "feedrateconversion", toolCfg.Stages.Feedrateconversion, "run the feed-rate conversion stage")
	boolFlag(&forceFlash, "c", "forceflash", false, "flash firmware even if the current version already meets the minimum")
	boolFlag(&translate, "s", "translate", false, "act as a transparent translator instead of printing")
	boolFlag(&settings, "e", "settings", false, "save collected printer settings to the settings file")

	stringFlag(&firmwareROM, "r", "firmwarerom", "", "firmware image to flash")
	stringFlag(&inputFile, "i", "inputfile", "", "input G-code file")
	stringFlag(&outputFile, "o", "outputfile", "", "output G-code file (defaults to input file, edited in place)")
	stringFlag(&provided, "d", "provided", "", "load printer settings from this file instead of querying the printer")

	fs.Float64Var(&backlashX, "backlashX", toolCfg.Backlash.X, "backlash compensation, X axis")
	fs.Float64Var(&backlashY, "backlashY", toolCfg.Backlash.Y, "backlash compensation, Y axis")
	fs.Float64Var(&backlashSpeed, "backlashSpeed", toolCfg.Backlash.Speed, "backlash compensation reference speed")
	fs.IntVar(&filamentType, "filamentType", toolCfg.Filament.Type, "filament type code")
	fs.IntVar(&filamentTemperature, "filamentTemperature", toolCfg.Filament.Temperature, "filament temperature, Celsius")
	fs.Float64Var(&backLeftOffset, "backLeftOffset", 0, "bed back-left corner Z offset")
	fs.Float64Var(&backRightOffset, "backRightOffset", 0, "bed back-right corner Z offset")
	fs.Float64Var(&frontLeftOffset, "frontLeftOffset", 0, "bed front-left corner Z offset")
	fs.Float64Var(&frontRightOffset, "frontRightOffset", 0, "bed front-right corner Z offset")
	fs.BoolVar(&monitor, "monitor", false, "show a live text-UI print monitor while streaming")

	portDevice := fs.String("port", "", "serial device (no default; when empty no printer is opened, and the configured device glob is not consulted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	applog.Logger.Printf("m3dhost %s (%s) starting", Version, Commit)

	if translate {
		return runTranslate(*portDevice)
	}

	if firmwareROM != "" {
		return runFlash(*portDevice, firmwareROM, forceFlash)
	}

	if inputFile == "" {
		return fmt.Errorf("m3dhost: -i/--inputfile is required")
	}
	if outputFile == "" {
		outputFile = inputFile
	}

	sess, closeSession, err := openSession(*portDevice)
	if err != nil {
		return err
	}
	defer closeSession()

	if provided != "" {
		ps, err := config.LoadSettings(provided)
		if err != nil {
			return fmt.Errorf("m3dhost: load provided settings: %w", err)
		}
		applyProvidedSettings(sess, ps)
	} else if sess != nil {
		if err := sess.CollectInformation(); err != nil {
			return fmt.Errorf("m3dhost: collect printer information: %w", err)
		}
	}

	if err := copyFile(inputFile, outputFile); err != nil {
		return fmt.Errorf("m3dhost: copy input to output: %w", err)
	}

	opts := pipeline.Options{
		Validation:           validation,
		Preparation:          preparation,
		WaveBonding:          wavebonding,
		ThermalBonding:       thermalbond,
		BedCompensation:      bedcomp,
		BacklashCompensation: backlashcmp,
		Filament:             pipeline.FilamentType(filamentType),
		FilamentTemperature:  filamentTemperature,
		BacklashX:            backlashX,
		BacklashY:            backlashY,
		BacklashSpeed:        backlashSpeed,
		BedHeightOffset:      float64(sessionOrZero(sess, func(s *session.Session) float32 { return s.BedHeightOffset })),
	}
	if bedcomp {
		opts.BedOrientation = bedOrientationFrom(sess, backLeftOffset, backRightOffset, frontLeftOffset, frontRightOffset)
	}

	if err := pipeline.Run(outputFile, opts); err != nil {
		return fmt.Errorf("m3dhost: pipeline: %w", err)
	}

	if sess == nil {
		fmt.Println("m3dhost: no printer attached, pipeline output written without streaming")
		return nil
	}

	if err := streamToPrinter(sess, outputFile, monitor); err != nil {
		return fmt.Errorf("m3dhost: print: %w", err)
	}

	if settings {
		if err := sess.SaveSettings(); err != nil {
			return fmt.Errorf("m3dhost: save settings: %w", err)
		}
	}

	return nil
}

func openSession(device string) (*session.Session, func(), error) {
	if device == "" {
		return nil, func() {}, nil
	}

	link, err := serial.Open(device)
	if err != nil {
		return nil, nil, fmt.Errorf("m3dhost: open %s: %w", device, err)
	}

	reconnect := func() (session.Link, error) { return serial.Open(device) }
	sess := session.New(link, reconnect)
	return sess, func() { sess.Close() }, nil
}

func runTranslate(device string) error {
	if device == "" {
		return fmt.Errorf("m3dhost: -port is required for -s/--translate")
	}
	link, err := serial.Open(device)
	if err != nil {
		return fmt.Errorf("m3dhost: open %s: %w", device, err)
	}
	defer link.Close()

	pair, err := serial.OpenPTYPair()
	if err != nil {
		return fmt.Errorf("m3dhost: open pty pair: %w", err)
	}
	defer pair.Close()

	devicePath, err := translator.StableDeviceName()
	if err != nil {
		return err
	}
	if err := translator.LinkStableDevice(devicePath, pair.SlavePath); err != nil {
		return err
	}
	defer os.Remove(devicePath)

	fmt.Printf("m3dhost: translating on %s\n", devicePath)
	return translator.New(link, pair.Master).Run()
}

func runFlash(device, romPath string, force bool) error {
	if device == "" {
		return fmt.Errorf("m3dhost: -port is required for -r/--firmwarerom")
	}
	rom, err := os.ReadFile(romPath) // #nosec G304 -- operator-supplied firmware image path
	if err != nil {
		return fmt.Errorf("m3dhost: read firmware image: %w", err)
	}

	link, err := serial.Open(device)
	if err != nil {
		return fmt.Errorf("m3dhost: open %s: %w", device, err)
	}
	defer link.Close()

	if !force {
		valid, err := firmware.IsFirmwareValid(link, 0)
		if err == nil && valid {
			fmt.Println("m3dhost: firmware already valid, use -c/--forceflash to reflash")
			return nil
		}
	}

	prepared := firmware.PrepareForFlash(rom)
	if err := firmware.Flash(link, prepared, 0); err != nil {
		return fmt.Errorf("m3dhost: flash: %w", err)
	}
	fmt.Println("m3dhost: firmware flashed")
	return nil
}

func streamToPrinter(sess *session.Session, path string, withMonitor bool) error {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied output file path
	if err != nil {
		return err
	}
	defer f.Close()

	total := executor.TotalLines(bufio.NewScanner(f))
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}

	var onProgress func(executor.Progress)
	var mon *monitorView
	if withMonitor {
		mon = newMonitorView()
		defer mon.Close()
		onProgress = mon.update
	}

	return executor.Run(sess, bufio.NewScanner(f), total, onProgress)
}

func applyProvidedSettings(sess *session.Session, ps *config.Settings) {
	if sess == nil {
		return
	}
	sess.BackRightOffset = ps.BackRightOffset
	sess.BackLeftOffset = ps.BackLeftOffset
	sess.FrontLeftOffset = ps.FrontLeftOffset
	sess.FrontRightOffset = ps.FrontRightOffset
	sess.BedHeightOffset = ps.BedHeightOffset
	sess.BacklashX = ps.BacklashX
	sess.BacklashY = ps.BacklashY
	sess.BacklashSpeed = ps.BacklashSpeed
	sess.BackRightOrientation = ps.BackRightOrientation
	sess.BackLeftOrientation = ps.BackLeftOrientation
	sess.FrontLeftOrientation = ps.FrontLeftOrientation
	sess.FrontRightOrientation = ps.FrontRightOrientation
	sess.FilamentTemperature = ps.FilamentTemperature
}

func bedOrientationFrom(sess *session.Session, backLeftOffset, backRightOffset, frontLeftOffset, frontRightOffset float64) geom.BedOrientation {
	o := geom.BedOrientation{
		BackLeftOffset:   backLeftOffset,
		BackRightOffset:  backRightOffset,
		FrontLeftOffset:  frontLeftOffset,
		FrontRightOffset: frontRightOffset,
	}
	if sess != nil {
		o.BackRight = float64(sess.BackRightOrientation)
		o.BackLeft = float64(sess.BackLeftOrientation)
		o.FrontLeft = float64(sess.FrontLeftOrientation)
		o.FrontRight = float64(sess.FrontRightOrientation)
	}
	return o
}

func sessionOrZero(sess *session.Session, get func(*session.Session) float32) float32 {
	if sess == nil {
		return 0
	}
	return get(sess)
}

func copyFile(src, dst string) error {
	if src == dst {
		return nil
	}
	data, err := os.ReadFile(src) // #nosec G304 -- operator-supplied input file path
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
