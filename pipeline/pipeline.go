package pipeline

import "fmt"

// Options selects which stages Run applies and carries the printer-derived
// parameters each stage needs. A zero-value Options runs no optional stage,
// including Validate and Prepare; FeedRateConversion and the dimension
// check always run since they are required to produce printer-safe G-code.
type Options struct {
	CenterModel              bool
	IgnoreDimensionLimits    bool
	Validation               bool
	Preparation              bool
	LeaveCornerExcess        bool
	WaveBonding              bool
	ThermalBonding           bool
	BedCompensation          bool
	BacklashCompensation     bool
	Filament                 FilamentType
	FilamentTemperature      int
	BedOrientation           heightAdjuster
	BedHeightOffset          float64
	BacklashX, BacklashY     float64
	BacklashSpeed            float64
}

// Run applies the full pre-processor pipeline to the file in place, in the
// printer's fixed stage order: optional centering, dimension check, optional
// validation, optional preparation, optional wave/thermal bonding, optional
// bed and backlash compensation, and feed-rate conversion.
func Run(path string, opts Options) error {
	var ext Extents

	if opts.CenterModel {
		e, err := CenterModel(path)
		if err != nil {
			return fmt.Errorf("pipeline: center model: %w", err)
		}
		ext = e
	}

	ok, e, err := DimensionCheck(path, opts.IgnoreDimensionLimits)
	if err != nil {
		return fmt.Errorf("pipeline: dimension check: %w", err)
	}
	if !ok && !opts.IgnoreDimensionLimits {
		return fmt.Errorf("pipeline: model exceeds printable bed dimensions")
	}
	if !opts.CenterModel {
		ext = e
	}

	if opts.Validation {
		if err := Validate(path); err != nil {
			return fmt.Errorf("pipeline: validate: %w", err)
		}
	}

	if opts.Preparation {
		if err := Prepare(path, opts.Filament, opts.FilamentTemperature, ext, opts.LeaveCornerExcess); err != nil {
			return fmt.Errorf("pipeline: prepare: %w", err)
		}
	}

	if opts.WaveBonding {
		if err := WaveBond(path); err != nil {
			return fmt.Errorf("pipeline: wave bond: %w", err)
		}
	}

	if opts.ThermalBonding {
		if err := ThermalBond(path, opts.Filament, opts.FilamentTemperature, opts.WaveBonding, false); err != nil {
			return fmt.Errorf("pipeline: thermal bond: %w", err)
		}
	}

	if opts.BedCompensation {
		if opts.BedOrientation == nil {
			return fmt.Errorf("pipeline: bed compensation requested without a bed orientation")
		}
		if err := BedCompensation(path, opts.BedOrientation, opts.BedHeightOffset); err != nil {
			return fmt.Errorf("pipeline: bed compensation: %w", err)
		}
	}

	if opts.BacklashCompensation {
		if err := BacklashCompensation(path, opts.BacklashX, opts.BacklashY, opts.BacklashSpeed); err != nil {
			return fmt.Errorf("pipeline: backlash compensation: %w", err)
		}
	}

	if err := FeedRateConversion(path); err != nil {
		return fmt.Errorf("pipeline: feed rate conversion: %w", err)
	}

	return nil
}
