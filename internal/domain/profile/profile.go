// Package profile models the learner background collected at sign-up and
// edited from the profile page, and persists it next to the user account.
package profile

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidBackground is returned when an enum field carries an unknown value.
var ErrInvalidBackground = errors.New("invalid background")

// ErrUserNotFound is returned when no account exists for the requested id.
var ErrUserNotFound = errors.New("user not found")

// ProgrammingExperience is the self-reported general programming level.
type ProgrammingExperience string

const (
	ProgrammingBeginner     ProgrammingExperience = "beginner"
	ProgrammingIntermediate ProgrammingExperience = "intermediate"
	ProgrammingAdvanced     ProgrammingExperience = "advanced"
	ProgrammingExpert       ProgrammingExperience = "expert"
)

// ExperienceLevel is used for both AI/ML and ROS experience.
type ExperienceLevel string

const (
	ExperienceNone         ExperienceLevel = "none"
	ExperienceBasic        ExperienceLevel = "basic"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// RoboticsExperience describes the learner's robotics background.
type RoboticsExperience string

const (
	RoboticsNone         RoboticsExperience = "none"
	RoboticsHobbyist     RoboticsExperience = "hobbyist"
	RoboticsStudent      RoboticsExperience = "student"
	RoboticsProfessional RoboticsExperience = "professional"
)

// Difficulty is the preferred content difficulty.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Learning goal labels offered by the sign-up form. Goals are free strings;
// these are the ones the advisory rules look for.
const (
	GoalComputerVision = "Computer Vision"
	GoalSimulation     = "Simulation (Gazebo/Isaac)"
)

// Background is the learner profile. Every field is optional; the empty
// string means "absent" for enum fields and nil means "absent" for
// HasRoboticsHardware.
type Background struct {
	ProgrammingExperience ProgrammingExperience `json:"programmingExperience,omitempty"`
	ProgrammingLanguages  []string              `json:"programmingLanguages"`
	AIMLExperience        ExperienceLevel       `json:"aiMlExperience,omitempty"`
	ROSExperience         ExperienceLevel       `json:"rosExperience,omitempty"`
	RoboticsExperience    RoboticsExperience    `json:"roboticsExperience,omitempty"`
	HardwareProjects      []string              `json:"hardwareProjects"`
	HasRoboticsHardware   *bool                 `json:"hasRoboticsHardware,omitempty"`
	HardwareDescription   string                `json:"hardwareDescription,omitempty"`
	LearningGoals         []string              `json:"learningGoals"`
	PreferredDifficulty   Difficulty            `json:"preferredDifficulty,omitempty"`
	OnboardingCompleted   bool                  `json:"onboardingCompleted"`
}

// User is an account with its background flattened into the same JSON object.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Background
}

// HasGoal reports whether goal is one of the learning goals (exact match).
func (b *Background) HasGoal(goal string) bool {
	for _, g := range b.LearningGoals {
		if g == goal {
			return true
		}
	}
	return false
}

// OwnsHardware reports whether the learner answered that they have robotics
// hardware, and what they answered.
func (b *Background) OwnsHardware() (owns, answered bool) {
	if b.HasRoboticsHardware == nil {
		return false, false
	}
	return *b.HasRoboticsHardware, true
}

// Bool returns a pointer to v, for building backgrounds and patches.
func Bool(v bool) *bool {
	return &v
}

// Validate checks every present enum field.
func (b *Background) Validate() error {
	if err := validateProgramming(b.ProgrammingExperience); err != nil {
		return err
	}
	if err := validateLevel("aiMlExperience", b.AIMLExperience); err != nil {
		return err
	}
	if err := validateLevel("rosExperience", b.ROSExperience); err != nil {
		return err
	}
	if err := validateRobotics(b.RoboticsExperience); err != nil {
		return err
	}
	return validateDifficulty(b.PreferredDifficulty)
}

// normalize replaces nil sets with empty ones so they serialize as [].
func (b *Background) normalize() {
	if b.ProgrammingLanguages == nil {
		b.ProgrammingLanguages = []string{}
	}
	if b.HardwareProjects == nil {
		b.HardwareProjects = []string{}
	}
	if b.LearningGoals == nil {
		b.LearningGoals = []string{}
	}
}

func validateProgramming(v ProgrammingExperience) error {
	switch v {
	case "", ProgrammingBeginner, ProgrammingIntermediate, ProgrammingAdvanced, ProgrammingExpert:
		return nil
	}
	return fmt.Errorf("%w: programmingExperience %q", ErrInvalidBackground, v)
}

func validateLevel(field string, v ExperienceLevel) error {
	switch v {
	case "", ExperienceNone, ExperienceBasic, ExperienceIntermediate, ExperienceAdvanced:
		return nil
	}
	return fmt.Errorf("%w: %s %q", ErrInvalidBackground, field, v)
}

func validateRobotics(v RoboticsExperience) error {
	switch v {
	case "", RoboticsNone, RoboticsHobbyist, RoboticsStudent, RoboticsProfessional:
		return nil
	}
	return fmt.Errorf("%w: roboticsExperience %q", ErrInvalidBackground, v)
}

func validateDifficulty(v Difficulty) error {
	switch v {
	case "", DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return nil
	}
	return fmt.Errorf("%w: preferredDifficulty %q", ErrInvalidBackground, v)
}
