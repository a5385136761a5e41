package achievement

// BuiltinRules is the standard achievement set. Keys are stable: they
// appear in persisted unlock rows and in bonus-event task labels, so
// renaming one would orphan existing unlocks.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Key:         "first-blood",
			Name:        "First Blood",
			Description: "Complete a first successful task",
			XPReward:    50,
			Predicate:   func(s Stats) bool { return s.SuccessCount >= 1 },
		},
		{
			Key:         "hot-streak",
			Name:        "Hot Streak",
			Description: "Five successes in a row",
			XPReward:    100,
			Predicate:   func(s Stats) bool { return s.CurrentStreak >= 5 },
		},
		{
			Key:         "veteran",
			Name:        "Veteran",
			Description: "Log 25 task events",
			XPReward:    150,
			Predicate:   func(s Stats) bool { return s.EventCount >= 25 },
		},
		{
			Key:         "centurion",
			Name:        "Centurion",
			Description: "Log 100 task events",
			XPReward:    300,
			Predicate:   func(s Stats) bool { return s.EventCount >= 100 },
		},
		{
			Key:         "rising-star",
			Name:        "Rising Star",
			Description: "Reach level 3",
			XPReward:    100,
			Predicate:   func(s Stats) bool { return s.Level >= 3 },
		},
		{
			Key:         "elite",
			Name:        "Elite",
			Description: "Reach level 5",
			XPReward:    200,
			Predicate:   func(s Stats) bool { return s.Level >= 5 },
		},
		{
			Key:         "flawless-ten",
			Name:        "Flawless Ten",
			Description: "Ten successes without a single failure",
			XPReward:    250,
			Predicate:   func(s Stats) bool { return s.SuccessCount >= 10 && s.FailureCount == 0 },
		},
	}
}
