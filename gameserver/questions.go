package gameserver

import "github.com/astroturfstudio/quizzi-go/protocol"

// bankQuestion pairs a wire question with the answer id the server grades
// against. The correct id never leaves the server before TimeUp.
type bankQuestion struct {
	question  protocol.Question
	correctID int
}

// defaultBank is the built-in question set used when no bank is supplied.
var defaultBank = []bankQuestion{
	{
		question: protocol.Question{
			ID:   "q-planets",
			Text: "Which planet has the most moons?",
			Answers: []protocol.Answer{
				{ID: 0, Text: "Mars"},
				{ID: 1, Text: "Saturn"},
				{ID: 2, Text: "Venus"},
				{ID: 3, Text: "Mercury"},
			},
		},
		correctID: 1,
	},
	{
		question: protocol.Question{
			ID:   "q-ports",
			Text: "Which port does HTTPS use by default?",
			Answers: []protocol.Answer{
				{ID: 0, Text: "80"},
				{ID: 1, Text: "21"},
				{ID: 2, Text: "443"},
				{ID: 3, Text: "8080"},
			},
		},
		correctID: 2,
	},
	{
		question: protocol.Question{
			ID:   "q-elements",
			Text: "What is the chemical symbol for gold?",
			Answers: []protocol.Answer{
				{ID: 0, Text: "Go"},
				{ID: 1, Text: "Gd"},
				{ID: 2, Text: "Ag"},
				{ID: 3, Text: "Au"},
			},
		},
		correctID: 3,
	},
	{
		question: protocol.Question{
			ID:   "q-oceans",
			Text: "Which is the largest ocean on Earth?",
			Answers: []protocol.Answer{
				{ID: 0, Text: "Pacific"},
				{ID: 1, Text: "Atlantic"},
				{ID: 2, Text: "Indian"},
				{ID: 3, Text: "Arctic"},
			},
		},
		correctID: 0,
	},
	{
		question: protocol.Question{
			ID:   "q-binary",
			Text: "What is 1011 in decimal?",
			Answers: []protocol.Answer{
				{ID: 0, Text: "9"},
				{ID: 1, Text: "11"},
				{ID: 2, Text: "13"},
				{ID: 3, Text: "15"},
			},
		},
		correctID: 1,
	},
	{
		question: protocol.Question{
			ID:   "q-paint",
			Text: "Who painted the Mona Lisa?",
			Answers: []protocol.Answer{
				{ID: 0, Text: "Michelangelo"},
				{ID: 1, Text: "Raphael"},
				{ID: 2, Text: "Leonardo da Vinci"},
				{ID: 3, Text: "Donatello"},
			},
		},
		correctID: 2,
	},
}
