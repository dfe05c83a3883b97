package game_constants

// NOTE: spot and length limits live on the validate tags of games.GameInput
const MinUnreservedSpots = 2 // host + at least one open spot

// Player (roster) levels
const (
	PLAYER_LEVEL_HOST       = 1
	PLAYER_LEVEL_JOINED     = 2
	PLAYER_LEVEL_INTERESTED = 3 // Reserved placeholder when user_id is NULL
	PLAYER_LEVEL_INVITED    = 4
)

// Participant (conversation membership) levels
const (
	PARTICIPANT_LEVEL_PLAYER     = 1
	PARTICIPANT_LEVEL_INTERESTED = 2
	PARTICIPANT_LEVEL_INVITED    = 3
)

// Message types
const (
	MESSAGE_TYPE_MESSAGE      = 1
	MESSAGE_TYPE_COMMENT      = 2
	MESSAGE_TYPE_GAME_INVITE  = 3
	MESSAGE_TYPE_NOTIFICATION = 4
	MESSAGE_TYPE_BROADCAST    = 5
)

// Game categories
const (
	CATEGORY_SPORT = "SPORT"
	CATEGORY_BOARD = "BOARD"
	CATEGORY_CARD  = "CARD"
	CATEGORY_VIDEO = "VIDEO"
)

var Categories = []string{CATEGORY_SPORT, CATEGORY_BOARD, CATEGORY_CARD, CATEGORY_VIDEO}

// Start date buckets accepted by the games feed
const (
	START_DATE_TODAY           = "TODAY"
	START_DATE_TOMORROW        = "TOMORROW"
	START_DATE_LATER_THIS_WEEK = "LATER_THIS_WEEK"
	START_DATE_NEXT_WEEK       = "NEXT_WEEK"
	START_DATE_LATER           = "LATER"
)

// System message contents
const JOINED_CONTENT = "joined"
const LEFT_CONTENT = "left"
const INVITED_CONTENT = "invited"
