package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type (
	// MotorVariant selects how many motor outputs the rig brings up.
	MotorVariant uint8

	// ClockSource selects the clock feeding the console serial baud generator.
	ClockSource uint8
)

const (
	MotorVariantNil MotorVariant = iota
	MotorVariantQuad
	MotorVariantHex
)

const (
	ClockSourceNil ClockSource = iota
	ClockSourceSystem
	ClockSourcePIOSC
)

// MotorCount returns the number of motor outputs of the variant.
func (v MotorVariant) MotorCount() uint8 {
	switch v {
	case MotorVariantQuad:
		return 4
	case MotorVariantHex:
		return 6
	default:
		return 0
	}
}

// OutputMask returns the bitmask of every motor output of the variant.
func (v MotorVariant) OutputMask() uint8 {
	return uint8(uint16(1)<<v.MotorCount() - 1)
}

// String returns the configuration name of the variant.
func (v MotorVariant) String() string {
	switch v {
	case MotorVariantQuad:
		return "quad"
	case MotorVariantHex:
		return "hex"
	default:
		return "nil"
	}
}

// UnmarshalText decodes the variant from its configuration name.
func (v *MotorVariant) UnmarshalText(text []byte) error {
	switch string(text) {
	case "quad", "4":
		*v = MotorVariantQuad
	case "hex", "6":
		*v = MotorVariantHex
	default:
		return fmt.Errorf("unknown motor variant %q", text)
	}
	return nil
}

// UnmarshalYAML decodes the variant from a YAML scalar.
func (v *MotorVariant) UnmarshalYAML(value *yaml.Node) error {
	return v.UnmarshalText([]byte(value.Value))
}

// MarshalText encodes the variant as its configuration name.
func (v MotorVariant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// String returns the configuration name of the clock source.
func (c ClockSource) String() string {
	switch c {
	case ClockSourceSystem:
		return "system"
	case ClockSourcePIOSC:
		return "piosc"
	default:
		return "nil"
	}
}

// UnmarshalText decodes the clock source from its configuration name.
func (c *ClockSource) UnmarshalText(text []byte) error {
	switch string(text) {
	case "system":
		*c = ClockSourceSystem
	case "piosc":
		*c = ClockSourcePIOSC
	default:
		return fmt.Errorf("unknown clock source %q", text)
	}
	return nil
}

// UnmarshalYAML decodes the clock source from a YAML scalar.
func (c *ClockSource) UnmarshalYAML(value *yaml.Node) error {
	return c.UnmarshalText([]byte(value.Value))
}

// MarshalText encodes the clock source as its configuration name.
func (c ClockSource) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
