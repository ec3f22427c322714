package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Suggestion is the classifier's guess for a new action title. It is stored
// verbatim next to the action so the UI can explain the default it picked.
type Suggestion struct {
	Type                  ActionType       `json:"type"`
	Confidence            Confidence       `json:"confidence"`
	Reason                string           `json:"reason"`
	RoutineFrequency      RoutineFrequency `json:"routine_frequency,omitempty"`
	RoutineWeekdays       []int            `json:"routine_weekdays,omitempty"`
	RoutineCountPerPeriod int              `json:"routine_count_per_period,omitempty"`
	MissionCompletionType CompletionType   `json:"mission_completion_type,omitempty"`
	MissionPeriodCycle    PeriodCycle      `json:"mission_period_cycle,omitempty"`
}

// Apply turns the suggestion into the settings group for its type.
func (s Suggestion) Apply() (*RoutineSettings, *MissionSettings) {
	switch s.Type {
	case ActionTypeRoutine:
		freq := s.RoutineFrequency
		if freq == "" {
			freq = FrequencyDaily
		}
		return &RoutineSettings{
			Frequency:      freq,
			Weekdays:       append([]int(nil), s.RoutineWeekdays...),
			CountPerPeriod: s.RoutineCountPerPeriod,
		}, nil
	case ActionTypeMission:
		ct := s.MissionCompletionType
		if ct == "" {
			ct = CompletionOnce
		}
		m := &MissionSettings{CompletionType: ct, Status: MissionActive}
		if ct == CompletionPeriodic {
			m.PeriodCycle = s.MissionPeriodCycle
		}
		return nil, m
	default:
		return nil, nil
	}
}

const (
	reasonReference = "reads as a mindset or principle to keep in mind"
	reasonReduce    = "reads as a lifestyle limit rather than a checkable task"
	reasonApproach  = "describes how to work, not a task to check"
	reasonOnce      = "names a one-time event or qualification"
	reasonPeriodic  = "a goal that repeats every period"
	reasonWeekdays  = "names specific days of the week"
	reasonMeasured  = "a completion goal with a measurable target"
	reasonGoal      = "a goal to complete"
	reasonNumeric   = "has a numeric target"
	reasonTimeboxed = "a time-boxed activity repeated as a habit"
	reasonSteady    = "something to keep doing consistently"
	reasonDaily     = "repeats every day"
	reasonWeekly    = "repeats every week"
	reasonMonthly   = "repeats every month"
	reasonVerb      = "an activity usually practiced as a habit"
	reasonFallback  = "defaulted to a daily routine"
)

var (
	reCompletionKo = regexp.MustCompile(`달성|취득|완료|마치기|끝내기|획득|통과|성공|성취|감량|증가|향상|개선|증진|완독|완성|클리어|정복|마스터|도달|이루기|확보|유치`)
	reCompletionEn = regexp.MustCompile(`\b(achiev\w*|reach\w*|complet\w*|finish\w*|pass|passed|earn\w*|win|lose|gain|improv\w*|increase|decrease|master)\b`)
	reGoalKo       = regexp.MustCompile(`목표|도전|성공`)
	reGoalEn       = regexp.MustCompile(`\b(goal|target|challenge)\b`)
	reNumberKo     = regexp.MustCompile(`\d+\s*(점|개|명|만원|원|%|권|시간|분|km|kg|번|회|페이지|챕터|강|일|급|억)`)
	reNumberEn     = regexp.MustCompile(`\d+\s*(kg|km|lbs?|%|points?|hrs?|hours?|mins?|minutes?|pages?|chapters?|books?|lessons?|sessions?|posts?|times?|reps?|steps?|people|clients?)`)

	// Frequency phrases are removed before looking for a numeric target so
	// that "주 3회" is read as a cadence, not as a goal of three.
	reFrequencyPhrase = regexp.MustCompile(`(주|월|연|년)\s*\d+\s*회|\d+\s*(x|times?)\s*(per|a|/)?\s*(day|week|month|year)`)

	rePeriodic = regexp.MustCompile(`분기|연간|월간|주간|매월|월\s*\d+\s*회|매년|연\s*\d+\s*회|매주|주\s*\d+\s*회|quarterly|annually|yearly|monthly|weekly|daily|(every|per|each)\s+(day|week|month|year)`)
	reOnceKo   = regexp.MustCompile(`검진|승인|자격증|시험|\d+\s*급|여행|출장|모임.*시도|도전.*시도`)
	reOnceEn   = regexp.MustCompile(`\b(certification|certificate|exam|test|license|approval|trip|travel|visa|interview)\b`)

	reReferenceKo = regexp.MustCompile(`마음|태도|정신|자세|생각|마인드|가치|철학|원칙|명언|다짐|신념|기준|명심|사고방식|관점|시각|인식|깨달음|교훈|지향|지혜|습관`)
	reReferenceEn = regexp.MustCompile(`\b(mindset|attitude|discipline|consistency|values?|beliefs?|principles?|mentality|perspective|philosophy)\b`)
	reNegativeKo  = regexp.MustCompile(`하지\s*않기|두려워하지|망설이지|포기하지|극복`)
	reNegativeEn  = regexp.MustCompile(`\b(don't|do not|avoid|never)\b`)
	reReduce      = regexp.MustCompile(`줄이기|줄이$|\b(reduce|cut\s+down|quit|stop)\b`)

	reAbstractGoal   = regexp.MustCompile(`유지|확보|갖기`)
	reLifestyle      = regexp.MustCompile(`건강|식습관|생활|태도|효율적`)
	reAbstractAdverb = regexp.MustCompile(`효율적으로|생산적으로|체계적으로|전략적으로`)
	reAbstractTime   = regexp.MustCompile(`시간.*확보|시간.*갖기|여유.*만들기`)

	reRoutineVerbKo = regexp.MustCompile(`읽기|독서|공부|운동|명상|기도|쓰기|보기|듣기|걷기|달리기|먹기|마시기|일어나기|자기|수면|정리|청소|체크|확인|검토|복습|예습|회고|미팅|정산|보고|점검|평가|결산|식사|챙기기|대화|문화생활|네트워킹|작성|오르기`)
	reRoutineVerbEn = regexp.MustCompile(`\b(read|study|learn|exercise|work\s*out|workout|run|walk|sleep|meditate|journal|write|practice|check|track|log|post|plan|review|clean|stretch|yoga|drink|eat)\b`)
	reRoutineAdverb = regexp.MustCompile(`꾸준히|계속|지속적으로|항상|매번|규칙적으로|반복적으로|습관적으로|\b(consistently|always|regularly)\b`)
	reTimeVerbKo    = regexp.MustCompile(`\d+\s*(시간|분)\s*(운동|공부|읽기|쓰기|명상|걷기|달리기|대화|수면)`)
	reTimeVerbEn    = regexp.MustCompile(`\d+\s*(hours?|hrs?|minutes?|mins?)\s*(of\s+)?(exercise|work\s*out|workout|study|read\w*|writ\w*|meditat\w*|walk\w*|run\w*|sleep)`)
	reDailyQuota    = regexp.MustCompile(`1\s*일\s+\d*\s*[가-힣]+`)

	reDaily     = regexp.MustCompile(`매일|하루|날마다|일일|\bdaily\b|every\s*day`)
	reWeekly    = regexp.MustCompile(`매주|주\s*\d+\s*회|주간|\bweekly\b|(every|per|each|a)\s+week`)
	reMonthly   = regexp.MustCompile(`매월|월\s*\d+\s*회|월간|\bmonthly\b|(every|per|each|a)\s+month`)
	reQuarterly = regexp.MustCompile(`분기|quarter`)
	reYearly    = regexp.MustCompile(`매년|연간|(연|년)\s*\d+\s*회|yearly|annual`)

	reWeekCount   = regexp.MustCompile(`주\s*(\d+)\s*회|(\d+)\s*(?:x|times?)\s*(?:per|a|/)?\s*week`)
	reMonthCount  = regexp.MustCompile(`월\s*(\d+)\s*회|(\d+)\s*(?:x|times?)\s*(?:per|a|/)?\s*month`)
	reWeekend     = regexp.MustCompile(`주말|토일|\bweekends?\b`)
	reWeekdayWord = regexp.MustCompile(`평일|월화수목금|\bweekdays?\b`)

	reDayRunKo    = regexp.MustCompile(`^([월화수목금토일]{2,7})(\s|$)`)
	reSingleDayKo = regexp.MustCompile(`(월|화|수|목|금|토|일)요일`)
	reDayTokenEn  = regexp.MustCompile(`\b(mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)(day)?\b`)

	reLatin = regexp.MustCompile(`[a-z]`)
)

var (
	weekdayKo = map[rune]int{'일': 0, '월': 1, '화': 2, '수': 3, '목': 4, '금': 5, '토': 6}
	weekdayEn = map[string]int{
		"sun": 0, "mon": 1, "tue": 2, "tues": 2, "wed": 3,
		"thu": 4, "thur": 4, "thurs": 4, "fri": 5, "sat": 6,
	}
)

// signals are the pattern classes a title matches, computed once per title.
type signals struct {
	text string

	completion bool
	goal       bool
	number     bool
	periodic   bool
	once       bool
	reference  bool
	negative   bool
	reduce     bool

	abstractGoal   bool
	lifestyle      bool
	abstractAdverb bool
	abstractTime   bool

	routineVerb   bool
	routineAdverb bool
	timePlusVerb  bool
	dailyQuota    bool

	daily     bool
	weekly    bool
	monthly   bool
	quarterly bool
	yearly    bool

	weekend     bool
	weekdayWord bool
	days        []int
}

func readSignals(title string) *signals {
	text := strings.ToLower(strings.TrimSpace(title))
	latin := reLatin.MatchString(text)
	numeric := reFrequencyPhrase.ReplaceAllString(text, " ")

	s := &signals{
		text:           text,
		completion:     reCompletionKo.MatchString(text) || reCompletionEn.MatchString(text),
		goal:           reGoalKo.MatchString(text) || reGoalEn.MatchString(text),
		number:         reNumberKo.MatchString(numeric) || reNumberEn.MatchString(numeric),
		periodic:       rePeriodic.MatchString(text),
		reference:      reReferenceKo.MatchString(text) || reReferenceEn.MatchString(text),
		negative:       reNegativeKo.MatchString(text) || reNegativeEn.MatchString(text),
		reduce:         reReduce.MatchString(text),
		abstractGoal:   reAbstractGoal.MatchString(text),
		lifestyle:      reLifestyle.MatchString(text),
		abstractAdverb: reAbstractAdverb.MatchString(text),
		abstractTime:   reAbstractTime.MatchString(text),
		routineVerb:    reRoutineVerbKo.MatchString(text) || (latin && reRoutineVerbEn.MatchString(text)),
		routineAdverb:  reRoutineAdverb.MatchString(text),
		timePlusVerb:   reTimeVerbKo.MatchString(text) || (latin && reTimeVerbEn.MatchString(text)),
		dailyQuota:     reDailyQuota.MatchString(text),
		daily:          reDaily.MatchString(text),
		weekly:         reWeekly.MatchString(text),
		monthly:        reMonthly.MatchString(text),
		quarterly:      reQuarterly.MatchString(text),
		yearly:         reYearly.MatchString(text),
		weekend:        reWeekend.MatchString(text),
		weekdayWord:    reWeekdayWord.MatchString(text),
	}
	s.once = !s.periodic && (reOnceKo.MatchString(text) || reOnceEn.MatchString(text))
	s.days = explicitWeekdays(text, latin)
	return s
}

// explicitWeekdays extracts day names such as "월수금 운동", "금요일 요가" or
// "mon/wed/fri run". It returns nil when no specific day is named.
func explicitWeekdays(text string, latin bool) []int {
	if m := reDayRunKo.FindStringSubmatch(text); m != nil {
		var days []int
		seen := map[int]bool{}
		for _, r := range m[1] {
			d := weekdayKo[r]
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
		if len(days) >= 2 {
			return days
		}
	}
	if m := reSingleDayKo.FindStringSubmatch(text); m != nil {
		for _, r := range m[1] {
			return []int{weekdayKo[r]}
		}
	}
	if !latin {
		return nil
	}
	var days []int
	seen := map[int]bool{}
	fullName := false
	for _, m := range reDayTokenEn.FindAllStringSubmatch(text, -1) {
		d, ok := weekdayEn[m[1]]
		if !ok {
			continue
		}
		if m[2] != "" {
			fullName = true
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	// A lone abbreviation ("sun", "sat") is usually an ordinary word.
	if !fullName && len(days) < 2 {
		return nil
	}
	return days
}

func firstCount(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		if n, err := strconv.Atoi(g); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

type rule struct {
	name    string
	matches func(s *signals) bool
	suggest func(s *signals) Suggestion
}

// Classifier evaluates an ordered rule list; the first matching rule wins.
type Classifier struct {
	rules []rule
}

func reference(c Confidence, reason string) func(*signals) Suggestion {
	return func(*signals) Suggestion {
		return Suggestion{Type: ActionTypeReference, Confidence: c, Reason: reason}
	}
}

func onceMission(c Confidence, reason string) func(*signals) Suggestion {
	return func(*signals) Suggestion {
		return Suggestion{Type: ActionTypeMission, Confidence: c, Reason: reason, MissionCompletionType: CompletionOnce}
	}
}

func dailyRoutine(c Confidence, reason string) func(*signals) Suggestion {
	return func(*signals) Suggestion {
		return Suggestion{Type: ActionTypeRoutine, Confidence: c, Reason: reason, RoutineFrequency: FrequencyDaily}
	}
}

func periodicMission(c Confidence, s *signals) Suggestion {
	cycle := CycleWeekly
	switch {
	case s.quarterly:
		cycle = CycleQuarterly
	case s.yearly:
		cycle = CycleYearly
	case s.monthly:
		cycle = CycleMonthly
	}
	return Suggestion{
		Type:                  ActionTypeMission,
		Confidence:            c,
		Reason:                reasonPeriodic,
		MissionCompletionType: CompletionPeriodic,
		MissionPeriodCycle:    cycle,
	}
}

func weeklyRoutine(days []int, reason string) Suggestion {
	return Suggestion{
		Type:             ActionTypeRoutine,
		Confidence:       ConfidenceHigh,
		Reason:           reason,
		RoutineFrequency: FrequencyWeekly,
		RoutineWeekdays:  days,
	}
}

// NewClassifier builds the rule list. Order is significant: vocabulary
// classes overlap, and a title takes the type of the first rule it matches.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{
			name:    "reference",
			matches: func(s *signals) bool { return s.reference || s.negative },
			suggest: reference(ConfidenceHigh, reasonReference),
		},
		{
			name:    "reduce",
			matches: func(s *signals) bool { return s.reduce },
			suggest: reference(ConfidenceHigh, reasonReduce),
		},
		{
			name:    "abstract-maintenance",
			matches: func(s *signals) bool { return s.abstractGoal && (s.reference || s.lifestyle) },
			suggest: reference(ConfidenceHigh, reasonReference),
		},
		{
			name:    "abstract-approach",
			matches: func(s *signals) bool { return s.abstractAdverb },
			suggest: reference(ConfidenceMedium, reasonApproach),
		},
		{
			name:    "one-time-event",
			matches: func(s *signals) bool { return s.once },
			suggest: onceMission(ConfidenceHigh, reasonOnce),
		},
		{
			name:    "abstract-time",
			matches: func(s *signals) bool { return s.abstractTime && !s.routineVerb },
			suggest: reference(ConfidenceMedium, reasonApproach),
		},
		{
			name: "periodic-mission",
			matches: func(s *signals) bool {
				cadence := s.quarterly || s.yearly || s.monthly || s.weekly
				return cadence && (s.completion || s.goal || s.number)
			},
			suggest: func(s *signals) Suggestion { return periodicMission(ConfidenceHigh, s) },
		},
		{
			name:    "weekdays",
			matches: func(s *signals) bool { return len(s.days) > 0 },
			suggest: func(s *signals) Suggestion { return weeklyRoutine(s.days, reasonWeekdays) },
		},
		{
			name:    "measured-completion",
			matches: func(s *signals) bool { return s.completion && s.number },
			suggest: onceMission(ConfidenceHigh, reasonMeasured),
		},
		{
			name:    "completion",
			matches: func(s *signals) bool { return s.completion || s.goal },
			suggest: onceMission(ConfidenceMedium, reasonGoal),
		},
		{
			name:    "numeric",
			matches: func(s *signals) bool { return s.number && !s.daily && !s.weekly && !s.monthly },
			suggest: func(s *signals) Suggestion {
				switch {
				case s.dailyQuota:
					return dailyRoutine(ConfidenceHigh, reasonDaily)(s)
				case s.timePlusVerb:
					return dailyRoutine(ConfidenceMedium, reasonTimeboxed)(s)
				default:
					return onceMission(ConfidenceMedium, reasonNumeric)(s)
				}
			},
		},
		{
			name:    "steady-verb",
			matches: func(s *signals) bool { return s.routineAdverb && s.routineVerb },
			suggest: dailyRoutine(ConfidenceHigh, reasonSteady),
		},
		{
			name:    "weekend",
			matches: func(s *signals) bool { return s.weekend },
			suggest: func(*signals) Suggestion { return weeklyRoutine([]int{0, 6}, reasonWeekdays) },
		},
		{
			name:    "weekday",
			matches: func(s *signals) bool { return s.weekdayWord },
			suggest: func(*signals) Suggestion { return weeklyRoutine([]int{1, 2, 3, 4, 5}, reasonWeekdays) },
		},
		{
			name:    "daily",
			matches: func(s *signals) bool { return s.daily || s.dailyQuota },
			suggest: dailyRoutine(ConfidenceHigh, reasonDaily),
		},
		{
			name:    "weekly",
			matches: func(s *signals) bool { return s.weekly },
			suggest: func(s *signals) Suggestion {
				return Suggestion{
					Type:                  ActionTypeRoutine,
					Confidence:            ConfidenceHigh,
					Reason:                reasonWeekly,
					RoutineFrequency:      FrequencyWeekly,
					RoutineCountPerPeriod: firstCount(reWeekCount, s.text),
				}
			},
		},
		{
			name:    "monthly",
			matches: func(s *signals) bool { return s.monthly },
			suggest: func(s *signals) Suggestion {
				n := firstCount(reMonthCount, s.text)
				if n == 0 {
					n = 1
				}
				return Suggestion{
					Type:                  ActionTypeRoutine,
					Confidence:            ConfidenceMedium,
					Reason:                reasonMonthly,
					RoutineFrequency:      FrequencyMonthly,
					RoutineCountPerPeriod: n,
				}
			},
		},
		{
			name:    "long-cycle",
			matches: func(s *signals) bool { return s.quarterly || s.yearly },
			suggest: func(s *signals) Suggestion { return periodicMission(ConfidenceMedium, s) },
		},
		{
			name:    "routine-verb",
			matches: func(s *signals) bool { return s.routineVerb },
			suggest: dailyRoutine(ConfidenceMedium, reasonVerb),
		},
	}}
}

// Suggest classifies a title. Titles matching no rule default to a daily
// routine with low confidence.
func (c *Classifier) Suggest(title string) Suggestion {
	s := readSignals(title)
	for _, r := range c.rules {
		if r.matches(s) {
			return r.suggest(s)
		}
	}
	return dailyRoutine(ConfidenceLow, reasonFallback)(s)
}

// Rule returns the name of the rule that classifies title, or "" for the
// fallback. Used by `mandaact suggest --explain`.
func (c *Classifier) Rule(title string) string {
	s := readSignals(title)
	for _, r := range c.rules {
		if r.matches(s) {
			return r.name
		}
	}
	return ""
}

var defaultClassifier = NewClassifier()

// Suggest classifies title with the default rule set.
func Suggest(title string) Suggestion {
	return defaultClassifier.Suggest(title)
}

// SuggestRule names the default rule that classifies title.
func SuggestRule(title string) string {
	return defaultClassifier.Rule(title)
}
