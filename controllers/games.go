package controllers

import (
	"Recit/middleware"
	"Recit/services/feed"
	"Recit/services/games"
	"Recit/services/geo"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// @Summary Lists the public games of a viewport
// @Description Upcoming public games inside the bounds, ordered by start time
// @Tags games
// @Produce json
// @Param cursor query string false "RFC3339 start time to continue after"
// @Param category query string false "SPORT, BOARD, CARD or VIDEO"
// @Param sport query string false "Sport name"
// @Param start_date query string false "TODAY, TOMORROW, LATER_THIS_WEEK, NEXT_WEEK or LATER"
// @Param bounds query string false "north,west,south,east"
// @Param min_open_spots query int false "Minimum open spots"
// @Success 200 {object} object{total_count=integer,edges=[]object,has_next_page=boolean}
// @Failure 422 {object} object{error=string,reason=string,fields=[]object}
// @Router /games [get]
func ListGames(engine *feed.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		cursor, ok := queryTime(c, "cursor")
		if !ok {
			return
		}
		args := feed.GamesArgs{
			Cursor:    cursor,
			Category:  c.Query("category"),
			Sport:     c.Query("sport"),
			StartDate: c.Query("start_date"),
		}

		if raw := c.Query("bounds"); raw != "" {
			values, err := geo.ParseValues(raw)
			if err != nil {
				invalid(c, "bounds", err.Error())
				return
			}
			args.Bounds = values
		}
		if raw := c.Query("min_open_spots"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				invalid(c, "min_open_spots", "must be an integer")
				return
			}
			args.MinOpenSpots = n
		}

		page, err := engine.ListGames(c.Request.Context(), args)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// @Summary Gets a game with its roster
// @Tags games
// @Produce json
// @Param id path int true "Game id"
// @Success 200 {object} games.GameDetail
// @Failure 404 {object} object{error=string,reason=string}
// @Router /games/{id} [get]
func GetGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		detail, err := svc.GetGame(c.Request.Context(), middleware.CurrentUser(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

// @Summary Creates a game hosted by the caller
// @Tags games
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game body games.GameInput true "Game"
// @Success 201 {object} views.Game
// @Failure 422 {object} object{error=string,reason=string,fields=[]object}
// @Router /auth/games [post]
// @Security ApiKeyAuth
func CreateGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in games.GameInput
		if err := c.ShouldBindJSON(&in); err != nil {
			invalid(c, "body", "must be a JSON object of the documented shape")
			return
		}
		game, err := svc.CreateGame(c.Request.Context(), middleware.CurrentUser(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, game)
	}
}

// @Summary Updates a game
// @Description Only the host (or an admin) can edit. Changing spots_reserved adds or removes reserved spots
// @Tags games
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Param game body games.GameInput true "Fields to change"
// @Success 200 {object} views.Game
// @Failure 409 {object} object{error=string,reason=string}
// @Router /auth/games/{id} [patch]
// @Security ApiKeyAuth
func UpdateGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in games.GameInput
		if err := c.ShouldBindJSON(&in); err != nil {
			invalid(c, "body", "must be a JSON object of the documented shape")
			return
		}
		game, err := svc.UpdateGame(c.Request.Context(), middleware.CurrentUser(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, game)
	}
}

// @Summary Deletes a game
// @Tags games
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Success 200 {object} object{message=string}
// @Router /auth/games/{id} [delete]
// @Security ApiKeyAuth
func DeleteGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteGame(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
	}
}

func rosterHandler(action func(c *gin.Context, actorID, gameID uint) (interface{}, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		result, err := action(c, middleware.CurrentUser(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// @Summary Joins a game
// @Description Claims a reserved spot when the caller was invited, otherwise takes an open spot
// @Tags roster
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Success 200 {object} views.Game
// @Failure 409 {object} object{error=string,reason=string}
// @Router /auth/games/{id}/join [post]
// @Security ApiKeyAuth
func JoinGame(svc *games.Service) gin.HandlerFunc {
	return rosterHandler(func(c *gin.Context, actorID, gameID uint) (interface{}, error) {
		return svc.JoinGame(c.Request.Context(), actorID, gameID)
	})
}

// @Summary Leaves a game
// @Tags roster
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Success 200 {object} views.Game
// @Failure 409 {object} object{error=string,reason=string}
// @Router /auth/games/{id}/leave [post]
// @Security ApiKeyAuth
func LeaveGame(svc *games.Service) gin.HandlerFunc {
	return rosterHandler(func(c *gin.Context, actorID, gameID uint) (interface{}, error) {
		return svc.LeaveGame(c.Request.Context(), actorID, gameID)
	})
}

// @Summary Follows a game without playing
// @Tags roster
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Success 200 {object} views.Game
// @Router /auth/games/{id}/subscribe [post]
// @Security ApiKeyAuth
func SubscribeGame(svc *games.Service) gin.HandlerFunc {
	return rosterHandler(func(c *gin.Context, actorID, gameID uint) (interface{}, error) {
		return svc.SubscribeGame(c.Request.Context(), actorID, gameID)
	})
}

// @Summary Stops following a game
// @Tags roster
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Success 200 {object} views.Game
// @Router /auth/games/{id}/unsubscribe [post]
// @Security ApiKeyAuth
func UnsubscribeGame(svc *games.Service) gin.HandlerFunc {
	return rosterHandler(func(c *gin.Context, actorID, gameID uint) (interface{}, error) {
		return svc.UnsubscribeGame(c.Request.Context(), actorID, gameID)
	})
}

// @Summary Invites users to a game
// @Tags roster
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param id path int true "Game id"
// @Param body body object{user_ids=[]int} true "Users to invite"
// @Success 200 {object} object{invited=[]object}
// @Router /auth/games/{id}/invite [post]
// @Security ApiKeyAuth
func InviteToGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var body struct {
			UserIDs []uint `json:"user_ids"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			invalid(c, "body", "must be a JSON object of the documented shape")
			return
		}
		invited, err := svc.InviteToGame(c.Request.Context(), middleware.CurrentUser(c), id, body.UserIDs)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"invited": invited})
	}
}

// @Summary Lists the games the caller plays in
// @Tags games
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param past query bool false "Past games instead of upcoming ones"
// @Param cursor query string false "RFC3339 start time to continue from"
// @Success 200 {object} object{total_count=integer,edges=[]object,has_next_page=boolean}
// @Router /auth/me/games [get]
// @Security ApiKeyAuth
func ListUserGames(engine *feed.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		cursor, ok := queryTime(c, "cursor")
		if !ok {
			return
		}
		past := c.Query("past") == "true"
		page, err := engine.ListUserGames(c.Request.Context(), middleware.CurrentUser(c), past, cursor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}
