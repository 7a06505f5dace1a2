package leitner

// MaxIntervalDays caps every review interval at roughly a century.
const MaxIntervalDays = 36500

// maxDoublingBox is the first box whose 2^box fallback exceeds MaxIntervalDays.
const maxDoublingBox = 16

// PromotionRule says how many consecutive correct answers move a card up from a box.
type PromotionRule struct {
	CorrectAnswersNeeded int
}

// DemotionRule says where a card goes after a miss in a box.
// IncorrectAnswersNeeded is carried for configuration symmetry; a single
// incorrect answer always demotes.
type DemotionRule struct {
	IncorrectAnswersNeeded int
	DemoteToBox            int
}

// RuleSet holds the Leitner box configuration. It is pure data and is
// expected to be validated before it reaches the scheduler.
type RuleSet struct {
	NumberOfBoxes     int
	Promotion         map[int]PromotionRule
	Demotion          map[int]DemotionRule
	Intervals         map[int]int // box -> interval in days
	MaxNewCardsPerDay int
}

// DefaultRuleSet returns a five box configuration with doubling intervals.
func DefaultRuleSet() RuleSet {
	rs := RuleSet{
		NumberOfBoxes:     5,
		Promotion:         make(map[int]PromotionRule),
		Demotion:          make(map[int]DemotionRule),
		Intervals:         make(map[int]int),
		MaxNewCardsPerDay: 20,
	}
	for box := 0; box < rs.NumberOfBoxes; box++ {
		rs.Promotion[box] = PromotionRule{CorrectAnswersNeeded: 1}
		rs.Intervals[box] = 1 << box
		if box > 0 {
			rs.Demotion[box] = DemotionRule{IncorrectAnswersNeeded: 1, DemoteToBox: 0}
		}
	}
	return rs
}

// TopBox returns the index of the highest box.
func (rs RuleSet) TopBox() int {
	return rs.NumberOfBoxes - 1
}
