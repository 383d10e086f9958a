package booking

import "sort"

// AvailableRooms computes which of the supplied rooms could currently accept
// a new reservation for one slot, given each room's committed occupancy for
// that exact (date, start, end) key. A room qualifies when a minimal
// reservation (occupancy 1) would still fit: solo and group rooms must be
// entirely free, shared benches must have at least one seat left.
//
// The caller is responsible for validating the slot window beforehand; see
// ValidateWindow. An empty result is a normal outcome, not a failure.
func AvailableRooms(rooms []Room, occupancy map[string]int, kindFilter RoomKind) []Room {
	available := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if kindFilter != "" && room.Kind != kindFilter {
			continue
		}
		if room.HasRoomFor(occupancy[room.ID], 1) {
			available = append(available, room)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		if available[i].Name == available[j].Name {
			return available[i].ID < available[j].ID
		}
		return available[i].Name < available[j].Name
	})

	return available
}
