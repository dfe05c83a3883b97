package roster

import game_constants "Recit/constants/game"

// participantLevelNone stands for a user with no Participant row.
const participantLevelNone = 0

type joinAction int

const (
	actionClaimReserved joinAction = iota + 1
	actionCreatePlayer
	actionRejectFull
)

func (a joinAction) String() string {
	switch a {
	case actionClaimReserved:
		return "claim-reserved"
	case actionCreatePlayer:
		return "create-player"
	default:
		return "reject-full"
	}
}

// joinState is what a join decision depends on. hasReservedSlot is only
// true for invitees while an unclaimed placeholder is left.
type joinState struct {
	level           int
	hasReservedSlot bool
	hasOpenSpot     bool
}

type joinTransition struct {
	action    joinAction
	nextLevel int
}

var (
	claim  = joinTransition{actionClaimReserved, game_constants.PARTICIPANT_LEVEL_PLAYER}
	create = joinTransition{actionCreatePlayer, game_constants.PARTICIPANT_LEVEL_PLAYER}
)

var joinTable = map[joinState]joinTransition{
	{participantLevelNone, false, true}:  create,
	{participantLevelNone, false, false}: {action: actionRejectFull, nextLevel: participantLevelNone},

	{game_constants.PARTICIPANT_LEVEL_PLAYER, false, true}:  create,
	{game_constants.PARTICIPANT_LEVEL_PLAYER, false, false}: {action: actionRejectFull, nextLevel: game_constants.PARTICIPANT_LEVEL_PLAYER},

	{game_constants.PARTICIPANT_LEVEL_INTERESTED, true, true}:   claim,
	{game_constants.PARTICIPANT_LEVEL_INTERESTED, true, false}:  claim,
	{game_constants.PARTICIPANT_LEVEL_INTERESTED, false, true}:  create,
	{game_constants.PARTICIPANT_LEVEL_INTERESTED, false, false}: {action: actionRejectFull, nextLevel: game_constants.PARTICIPANT_LEVEL_INTERESTED},

	{game_constants.PARTICIPANT_LEVEL_INVITED, true, true}:   claim,
	{game_constants.PARTICIPANT_LEVEL_INVITED, true, false}:  claim,
	{game_constants.PARTICIPANT_LEVEL_INVITED, false, true}:  create,
	{game_constants.PARTICIPANT_LEVEL_INVITED, false, false}: {action: actionRejectFull, nextLevel: game_constants.PARTICIPANT_LEVEL_INVITED},
}

// decideJoin looks up what a join does from the given state.
func decideJoin(s joinState) joinTransition {
	if t, ok := joinTable[s]; ok {
		return t
	}
	// only invitees can hold a reservation
	s.hasReservedSlot = false
	if t, ok := joinTable[s]; ok {
		return t
	}
	return joinTransition{action: actionRejectFull, nextLevel: s.level}
}

type subscribeAction int

const (
	actionSubscribe subscribeAction = iota + 1
	actionRejectSubscribed
)

// subscribeTable maps the current participant level to what subscribing
// does. Invitees become Interested and keep their invitation.
var subscribeTable = map[int]subscribeAction{
	participantLevelNone:                        actionSubscribe,
	game_constants.PARTICIPANT_LEVEL_INVITED:    actionSubscribe,
	game_constants.PARTICIPANT_LEVEL_INTERESTED: actionRejectSubscribed,
	game_constants.PARTICIPANT_LEVEL_PLAYER:     actionRejectSubscribed,
}

type unsubscribeAction int

const (
	actionUnsubscribe unsubscribeAction = iota + 1
	actionRejectNotSubscribed
	actionRejectPlayer
)

var unsubscribeTable = map[int]unsubscribeAction{
	participantLevelNone:                        actionRejectNotSubscribed,
	game_constants.PARTICIPANT_LEVEL_INVITED:    actionUnsubscribe,
	game_constants.PARTICIPANT_LEVEL_INTERESTED: actionUnsubscribe,
	game_constants.PARTICIPANT_LEVEL_PLAYER:     actionRejectPlayer,
}
