package cli

import (
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
)

// demoStore provides a small seeded bank for running without Postgres.
func demoStore() *memory.Store {
	store := memory.NewStore()
	store.AddSubject(domain.Subject{ID: "math", Name: "Mathematics"})
	store.AddSubject(domain.Subject{ID: "sci", Name: "Science"})
	store.AddTopic(domain.Topic{ID: "arith", Name: "Arithmetic", SubjectID: "math", NotesURL: "notes/arithmetic.pdf"})
	store.AddTopic(domain.Topic{ID: "geo", Name: "Geometry", SubjectID: "math"})
	store.AddTopic(domain.Topic{ID: "phys", Name: "Physics", SubjectID: "sci"})

	for _, q := range []domain.Question{
		demoQuestion("arith-1", "arith", "What is 7 x 8?", "56", "54", "64", "48"),
		demoQuestion("arith-2", "arith", "What is 144 / 12?", "12", "14", "11", "16"),
		demoQuestion("arith-3", "arith", "What is 15% of 200?", "30", "15", "20", "45"),
		demoQuestion("arith-4", "arith", "What is 2 to the power 10?", "1024", "512", "2048", "100"),
		demoQuestion("geo-1", "geo", "How many degrees are in a triangle?", "180", "90", "360", "270"),
		demoQuestion("geo-2", "geo", "Area of a 3 by 4 rectangle?", "12", "7", "14", "24"),
		demoQuestion("geo-3", "geo", "How many sides does a hexagon have?", "6", "5", "8", "7"),
		demoQuestion("phys-1", "phys", "SI unit of force?", "Newton", "Joule", "Watt", "Pascal"),
		demoQuestion("phys-2", "phys", "Speed of light is closest to?", "3 x 10^8 m/s", "3 x 10^6 m/s", "3 x 10^5 m/s", "3 x 10^10 m/s"),
		demoQuestion("phys-3", "phys", "Which particle has a negative charge?", "Electron", "Proton", "Neutron", "Photon"),
	} {
		store.AddQuestion(q)
	}
	return store
}

// demoQuestion lists the correct answer first; sessions shuffle options anyway.
func demoQuestion(id, topicID, text, correct string, others ...string) domain.Question {
	options := []domain.Option{{ID: "a", Text: correct}}
	for i, o := range others {
		options = append(options, domain.Option{ID: string(rune('b' + i)), Text: o})
	}
	return domain.Question{
		ID:              id,
		TopicID:         topicID,
		Text:            text,
		Options:         options,
		CorrectOptionID: "a",
		Difficulty:      "easy",
	}
}
