package nbt

import "math"

func floatBits(v float32) uint32   { return math.Float32bits(v) }
func bitsToFloat(v uint32) float32 { return math.Float32frombits(v) }

func doubleBits(v float64) uint64   { return math.Float64bits(v) }
func bitsToDouble(v uint64) float64 { return math.Float64frombits(v) }
