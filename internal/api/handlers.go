package api

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"mandaact/internal/engine"
)

type suggestRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type addActionRequest struct {
	SubGoalID string                  `json:"sub_goal_id"`
	Title     string                  `json:"title"`
	Type      string                  `json:"type"`
	Routine   *engine.RoutineSettings `json:"routine"`
	Mission   *engine.MissionSettings `json:"mission"`
}

func (s *Server) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return engine.ValidationError{Field: verrs[0].Field(), Reason: "failed " + verrs[0].Tag()}
		}
		return err
	}
	return nil
}

func (s *Server) suggest(c *fiber.Ctx) error {
	req := &suggestRequest{}
	if err := s.bind(c, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"suggestion": engine.Suggest(req.Title),
		"rule":       engine.SuggestRule(req.Title),
	})
}

func (s *Server) today(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	now := s.clock()
	items, err := s.svc.TodayActions(c.UserContext(), userID, now)
	if err != nil {
		return err
	}
	if items == nil {
		items = []engine.TodayItem{}
	}
	return c.JSON(fiber.Map{"date": now.Format(time.DateOnly), "items": items})
}

func (s *Server) listActions(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	actions, err := s.svc.ListActions(c.UserContext(), userID)
	if err != nil {
		return err
	}
	if actions == nil {
		actions = []engine.Action{}
	}
	return c.JSON(fiber.Map{"actions": actions})
}

func (s *Server) addAction(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	req := &addActionRequest{}
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	in := engine.AddActionInput{SubGoalID: req.SubGoalID, Title: req.Title, Routine: req.Routine, Mission: req.Mission}
	if req.Type != "" {
		t, err := engine.ParseActionType(req.Type)
		if err != nil {
			return engine.ValidationError{Field: "type", Reason: err.Error()}
		}
		in.Type = t
	}

	ctx := c.UserContext()
	// The sub-goal must belong to the caller's active mandalart.
	m, err := s.svc.ActiveMandalart(ctx, userID)
	if err != nil {
		return err
	}
	g, err := s.svc.ResolveSubGoal(ctx, m.ID, req.SubGoalID)
	if err != nil {
		return err
	}
	in.SubGoalID = g.ID

	a, err := s.svc.AddAction(ctx, in, s.clock())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (s *Server) check(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	res, err := s.svc.CheckAction(c.UserContext(), userID, c.Params("id"), s.clock())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (s *Server) uncheck(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	res, err := s.svc.UncheckAction(c.UserContext(), userID, c.Params("id"), s.clock())
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (s *Server) stats(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	d, err := s.svc.Dashboard(c.UserContext(), userID, s.clock())
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (s *Server) multipliers(c *fiber.Ctx) error {
	userID, err := s.user(c)
	if err != nil {
		return err
	}
	ms, err := s.svc.ActiveMultipliers(c.UserContext(), userID, s.clock())
	if err != nil {
		return err
	}
	if ms == nil {
		ms = []engine.Multiplier{}
	}
	total := engine.TotalMultiplier(ms)
	return c.JSON(fiber.Map{
		"multipliers": ms,
		"total":       total,
		"label":       engine.FormatMultiplier(total),
	})
}
