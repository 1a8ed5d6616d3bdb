package calculator

import "strconv"

// RSIName is the indicator name used for an RSI reading, e.g. "RSI14".
func RSIName(period int) string { return "RSI" + strconv.Itoa(period) }

// SMAName is the indicator name used for an SMA reading, e.g. "SMA20".
func SMAName(period int) string { return "SMA" + strconv.Itoa(period) }
