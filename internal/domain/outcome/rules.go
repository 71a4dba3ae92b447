package outcome

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/okian/scorebook/internal/domain/fielders"
	"github.com/okian/scorebook/internal/domain/model"
)

// Clue is the normalized view of one plate appearance handed to each rule.
type Clue struct {
	Code model.EventCode
	// Raw is the description exactly as received.
	Raw string
	// Text is the lowercased description with parentheticals and filler
	// words removed.
	Text string
	// Batter is the lowercased batter display name, "" when unresolved.
	Batter string
}

// Rule is one (predicate, producer) step of the classification cascade.
type Rule struct {
	Name    string
	Produce func(c *Clue) (Outcome, bool)
}

// Rules is the classification cascade. The first rule that produces an
// outcome wins, so order changes results on ambiguous text.
var Rules = []Rule{
	{Name: "unique_play", Produce: uniquePlay},
	{Name: "strikeout", Produce: strikeout},
	{Name: "air_out", Produce: airOut},
	{Name: "compound_code", Produce: compoundCode},
	{Name: "error_keyword", Produce: errorKeyword},
	{Name: "ground_out_keyword", Produce: groundOutKeyword},
	{Name: "hit", Produce: hit},
	{Name: "code_table", Produce: codeTable},
}

func kw(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
}

var (
	reParenthetical = regexp.MustCompile(`\([^)]*\)`)
	reFiller        = kw("deep", "shallow", "weak", "thru", "hole")
	reSpaces        = regexp.MustCompile(`\s+`)

	reInterference   = kw("interference")
	reCatcher        = kw("catcher")
	reHitByPitch     = kw(`hit by (?:a )?pitch`, `hit by pitched ball`)
	reBalk           = kw("balk", "balks")
	reWildPitch      = kw("wild pitch", "wp")
	rePassedBall     = kw("passed ball", "pb")
	reFieldersChoice = kw("fielder'?s choice", "fielders choice")
	reIntentional    = kw(`intentional(?:ly)? walk(?:s|ed)?`, "intentional base on balls")

	reStrikeout = kw("strikes out", "struck out", "called out on strikes")
	reLooking   = kw("looking", "called out on strikes")

	reSacFly  = kw("sacrifice fly", "sac fly")
	reLineOut = kw("lines out", "line out", "lined out")
	rePopOut  = kw("pops out", "pop out", "popped out", "pops up", "popped up")
	reFlyOut  = kw("flies out", "fly out", "flied out")

	reError    = kw("error", "errors")
	reThrowing = kw("throwing")
	reFielding = kw("fielding", "missed catch", "dropped", "muffed")

	reGroundDoublePlay = kw(`grounds? into (?:a )?double play`, "grounded into (?:a )?double play")
	reDoublePlay       = kw("double play")
	reTriplePlay       = kw("triple play")
	reForceOut         = kw(`forces? out`, "force out", "forced out")
	reSacBunt          = kw("sacrifice bunt", "sac bunt", "bunt sacrifice")
	reGroundOut        = kw(`grounds? out`, "grounded out", "ground out")

	reHomeRun = kw("homers", "home run", "grand slam", "homered")
	reTriple  = kw("triples", "tripled")
	reDouble  = kw("doubles", "doubled", "ground-rule double")
	reSingle  = kw("singles", "singled")
	reWalk    = kw("walks", "walked", "base on balls")
)

// fieldWords locates a fielded ball by area when no fielder is named.
var fieldWords = map[fielders.Position]*regexp.Regexp{
	fielders.LeftFielder:   kw("left field"),
	fielders.CenterFielder: kw("center field", "centre field"),
	fielders.RightFielder:  kw("right field"),
}

// clean lowercases raw and strips parentheticals ("(12)"), filler words and
// repeated whitespace.
func clean(raw string) string {
	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "’", "'")
	s = reParenthetical.ReplaceAllString(s, " ")
	s = reFiller.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// airEligible reports event codes an air out can carry. Hits and other
// compound codes never take the air-out path.
func airEligible(code model.EventCode) bool {
	switch code {
	case model.EventNone, model.EventFieldOut, model.EventSacFly, model.EventSacFlyDoublePlay:
		return true
	}
	return !code.Known()
}

func uniquePlay(c *Clue) (Outcome, bool) {
	switch {
	case reInterference.MatchString(c.Text) && reCatcher.MatchString(c.Text):
		return CatcherInterference(), true
	case reHitByPitch.MatchString(c.Text):
		return HitByPitch(), true
	case reBalk.MatchString(c.Text):
		return Balk(), true
	case reWildPitch.MatchString(c.Text):
		return WildPitch(), true
	case rePassedBall.MatchString(c.Text):
		return PassedBall(), true
	case reFieldersChoice.MatchString(c.Text):
		return Fielded(KindFieldersChoice, fielders.Resolve(c.Text)), true
	case reIntentional.MatchString(c.Text):
		return IntentionalWalk(), true
	}
	return Outcome{}, false
}

func strikeout(c *Clue) (Outcome, bool) {
	coded := c.Code == model.EventStrikeout || c.Code == model.EventStrikeoutDoublePlay
	if !coded && !reStrikeout.MatchString(c.Text) {
		return Outcome{}, false
	}
	if reLooking.MatchString(c.Text) {
		return StrikeoutLooking(), true
	}
	return StrikeoutSwinging(), true
}

func airOut(c *Clue) (Outcome, bool) {
	if !airEligible(c.Code) {
		return Outcome{}, false
	}
	var k Kind
	switch {
	case c.Code == model.EventSacFly || c.Code == model.EventSacFlyDoublePlay || reSacFly.MatchString(c.Text):
		k = KindSacFly
	case reLineOut.MatchString(c.Text):
		k = KindLineOut
	case rePopOut.MatchString(c.Text):
		k = KindPopOut
	case reFlyOut.MatchString(c.Text):
		k = KindFlyOut
	default:
		return Outcome{}, false
	}
	return Air(k, airPosition(c.Text)), true
}

// airPosition returns the fielder who made the catch: the earliest position
// named in the batter's clause, by fielder or by field area. Later clauses
// (relays, runner outs, errors) are read only when an earlier one names
// nobody.
func airPosition(text string) fielders.Position {
	for _, clause := range splitClauses(text) {
		if pos := firstPosition(clause); pos != 0 {
			return pos
		}
	}
	return 0
}

func firstPosition(clause string) fielders.Position {
	best, at := fielders.First(clause)
	for pos, re := range fieldWords {
		loc := re.FindStringIndex(clause)
		if loc != nil && (at < 0 || loc[0] < at) {
			best, at = pos, loc[0]
		}
	}
	return best
}

func compoundCode(c *Clue) (Outcome, bool) {
	switch c.Code {
	case model.EventGroundedIntoDoublePlay:
		return Fielded(KindGroundedIntoDoublePlay, fielders.Resolve(c.Text)), true
	case model.EventDoublePlay:
		return Fielded(KindDoublePlay, fielders.Resolve(c.Text)), true
	case model.EventTriplePlay:
		return Fielded(KindTriplePlay, fielders.Resolve(c.Text)), true
	case model.EventForceOut:
		return Fielded(KindForceOut, fielders.Resolve(c.Text)), true
	case model.EventFieldersChoice, model.EventFieldersChoiceOut:
		return Fielded(KindFieldersChoice, fielders.Resolve(c.Text)), true
	case model.EventFieldOut:
		return Fielded(KindGroundOut, fielders.Resolve(c.Text)), true
	case model.EventSacBunt:
		return Fielded(KindSacBunt, fielders.Resolve(c.Text)), true
	case model.EventFieldError:
		return ReachedOnError(fielders.Resolve(c.Text), errorKind(c.Text)), true
	}
	return Outcome{}, false
}

// errorKind picks the error annotation from textual cues alone.
func errorKind(text string) ErrorKind {
	switch {
	case reThrowing.MatchString(text):
		return ErrorThrowing
	case reFielding.MatchString(text):
		return ErrorFielding
	default:
		return ErrorUnspecified
	}
}

func errorKeyword(c *Clue) (Outcome, bool) {
	if c.Code.Known() || !reError.MatchString(c.Text) {
		return Outcome{}, false
	}
	return ReachedOnError(fielders.Resolve(c.Text), errorKind(c.Text)), true
}

func groundOutKeyword(c *Clue) (Outcome, bool) {
	if c.Code.Known() {
		return Outcome{}, false
	}
	var k Kind
	switch {
	case reTriplePlay.MatchString(c.Text):
		k = KindTriplePlay
	case reGroundDoublePlay.MatchString(c.Text):
		k = KindGroundedIntoDoublePlay
	case reDoublePlay.MatchString(c.Text):
		k = KindDoublePlay
	case reForceOut.MatchString(c.Text):
		k = KindForceOut
	case reSacBunt.MatchString(c.Text):
		k = KindSacBunt
	case reGroundOut.MatchString(c.Text):
		k = KindGroundOut
	default:
		return Outcome{}, false
	}
	return Fielded(k, fielders.Resolve(c.Text)), true
}

var hitCodes = map[model.EventCode]HitKind{
	model.EventSingle:  Single,
	model.EventDouble:  Double,
	model.EventTriple:  Triple,
	model.EventHomeRun: HomeRun,
}

func hitKind(c *Clue) (HitKind, bool) {
	if k, ok := hitCodes[c.Code]; ok {
		return k, true
	}
	if c.Code.Known() {
		return 0, false
	}
	switch {
	case reHomeRun.MatchString(c.Text):
		return HomeRun, true
	case reTriple.MatchString(c.Text):
		return Triple, true
	case reDouble.MatchString(c.Text):
		return Double, true
	case reSingle.MatchString(c.Text):
		return Single, true
	}
	return 0, false
}

func hit(c *Clue) (Outcome, bool) {
	k, ok := hitKind(c)
	if !ok {
		return Outcome{}, false
	}
	if putout, found := advancementPutout(c.Raw, c.Batter); found {
		return HitWithAdvancementOut(k, putout), true
	}
	return Hit(k), true
}

const outAt = "out at"

// advancementPutout looks for the batter's name followed by "out at" inside
// one clause and resolves the fielders named after "out at".
func advancementPutout(raw, batter string) (fielders.Sequence, bool) {
	if batter == "" {
		return nil, false
	}
	for _, clause := range splitClauses(raw) {
		text := clean(clause)
		at := strings.Index(text, outAt)
		if at < 0 {
			continue
		}
		if !strings.Contains(text[:at], batter) {
			continue
		}
		return fielders.Resolve(text[at+len(outAt):]), true
	}
	return nil, false
}

// splitClauses cuts raw on semicolons and on sentence periods. A period
// after a single letter ("J. Smith") is an initial, not a boundary.
func splitClauses(raw string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(raw)
	for i, r := range runes {
		switch {
		case r == ';':
		case r == '.' && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) && !isInitial(runes, i):
		default:
			continue
		}
		out = append(out, string(runes[start:i]))
		start = i + 1
	}
	return append(out, string(runes[start:]))
}

func isInitial(runes []rune, dot int) bool {
	if dot == 0 || !unicode.IsLetter(runes[dot-1]) {
		return false
	}
	return dot == 1 || !unicode.IsLetter(runes[dot-2])
}

var codeNotations = map[model.EventCode]func() Outcome{
	model.EventSingle:        func() Outcome { return Hit(Single) },
	model.EventDouble:        func() Outcome { return Hit(Double) },
	model.EventTriple:        func() Outcome { return Hit(Triple) },
	model.EventHomeRun:       func() Outcome { return Hit(HomeRun) },
	model.EventWalk:          Walk,
	model.EventHitByPitch:    HitByPitch,
	model.EventCatcherInterf: CatcherInterference,
	model.EventIntentWalk:    IntentionalWalk,
}

func codeTable(c *Clue) (Outcome, bool) {
	if f, ok := codeNotations[c.Code]; ok {
		return f(), true
	}
	if !c.Code.Known() && reWalk.MatchString(c.Text) {
		return Walk(), true
	}
	return Outcome{}, false
}
