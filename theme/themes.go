package theme

import "memory-match-server/game"

func faces(names ...string) []game.Face {
	out := make([]game.Face, len(names))
	for i, n := range names {
		out[i] = game.Face(n)
	}
	return out
}

// Classic is the default set: eight numbered faces for a 4x4 board.
func Classic() Theme {
	return Theme{
		ID:    "classic",
		Name:  "Classic",
		Faces: faces("card1", "card2", "card3", "card4", "card5", "card6", "card7", "card8"),
	}
}

// Vehicles pictures the faces behind card1..card8.
func Vehicles() Theme {
	return Theme{
		ID:   "vehicles",
		Name: "Vehicles",
		Faces: faces("bulldozer", "firetruck", "police", "roadster",
			"sailboat", "steamboat", "submarine", "train"),
	}
}

// Animals has enough faces for boards up to 6x6.
func Animals() Theme {
	return Theme{
		ID:   "animals",
		Name: "Animals",
		Faces: faces("bear", "cat", "chicken", "cow", "deer", "dog",
			"duck", "elephant", "fox", "frog", "giraffe", "horse",
			"koala", "lion", "monkey", "owl", "panda", "penguin"),
	}
}
