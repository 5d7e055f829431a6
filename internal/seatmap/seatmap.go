// Package seatmap holds the fixed mapping between user-facing seat numbers
// and the remote system's internal seat identifiers. The table is immutable
// and identical across sessions.
package seatmap

import "strconv"

const (
	MinSeat = 1
	MaxSeat = 60
)

var table = map[int]int64{
	1: 8397, 2: 8377, 3: 8357, 4: 8396, 5: 8376,
	6: 8356, 7: 8395, 8: 8375, 9: 8355, 10: 8394,
	11: 8374, 12: 8354, 13: 8393, 14: 8373, 15: 8353,
	16: 8392, 17: 8372, 18: 8352, 19: 8391, 20: 8371,
	21: 8351, 22: 8390, 23: 8370, 24: 8350, 25: 8389,
	26: 8369, 27: 8349, 28: 8388, 29: 8368, 30: 8348,
	31: 8387, 32: 8367, 33: 8347, 34: 8386, 35: 8366,
	36: 8346, 37: 8385, 38: 8365, 39: 8345, 40: 8384,
	41: 8364, 42: 8344, 43: 8383, 44: 8363, 45: 8343,
	46: 8382, 47: 8362, 48: 8342, 49: 8381, 50: 8361,
	51: 8341, 52: 8380, 53: 8360, 54: 8340, 55: 8379,
	56: 8359, 57: 8339, 58: 8378, 59: 8358, 60: 8338,
}

// Resolve maps a seat number to its remote identifier.
func Resolve(seatNumber int) (int64, bool) {
	id, ok := table[seatNumber]
	return id, ok
}

// ResolveString maps a seat number arriving as form text.
func ResolveString(seatNumber string) (int64, bool) {
	n, err := strconv.Atoi(seatNumber)
	if err != nil {
		return 0, false
	}
	return Resolve(n)
}

// Seats returns the valid seat numbers in ascending order.
func Seats() []int {
	seats := make([]int, 0, len(table))
	for n := MinSeat; n <= MaxSeat; n++ {
		seats = append(seats, n)
	}
	return seats
}
