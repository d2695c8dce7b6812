// Package advisory derives per-chapter reading advice from a learner's
// background. Advise is pure: the same profile and topic always produce the
// same bundle, and nothing is persisted.
package advisory

import (
	"strings"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

// Bundle is the advice shown above a chapter. All three lists are always
// non-nil so they serialize as JSON arrays.
type Bundle struct {
	Tips      []string `json:"tips"`
	Exercises []string `json:"exercises"`
	Resources []string `json:"resources"`
}

// Tips, exercises and resources, in the order the rules emit them.
const (
	TipBeginnerUnderstand = "💡 Take time to understand each code example - don't rush through them"
	TipBeginnerTypeOut    = "📝 Try typing out the code yourself instead of copy-pasting to build muscle memory"
	TipAdvancedOptimize   = "🚀 Focus on optimization and best practices in the advanced sections"
	TipROSLearningCurve   = "🤖 ROS has a learning curve - focus on understanding the core concepts first"
	TipROSSkipBasics      = "⚡ You can skip the basics - jump to the advanced implementation patterns"
	TipHardwareTest       = "💻 Test this concept on your actual hardware for hands-on learning"
	TipSimulation         = "🖥️ Focus on simulation - you can implement everything in Gazebo or Isaac Sim"
	TipAIMLStepByStep     = "🧠 AI/ML concepts can be complex - take it step by step"
	TipVisionGoal         = "👁️ This aligns with your computer vision learning goals - pay special attention!"
	TipSimulationGoal     = "🎮 This aligns with your simulation learning goals - explore the advanced features!"
	TipPreferBeginner     = "📚 Focus on understanding \"why\" before diving into \"how\""
	TipPreferAdvanced     = "🎯 Challenge yourself with the optional advanced sections"
	TipDefault            = "📖 Read through the entire chapter before starting the exercises"

	ExerciseBeginnerModify = "Start with simple modifications to existing code examples"
	ExerciseAdvancedExtend = "Implement additional features beyond the basic requirements"
	ExerciseVisionExtend   = "Implement a computer vision-based feature as an extension"
	ExerciseDefault        = "Complete the exercises at the end of this chapter"

	ResourceROSTutorials    = "ROS Tutorials: http://wiki.ros.org/ROS/Tutorials"
	ResourceGazeboTutorials = "Gazebo Tutorials: https://gazebosim.org/docs"
	ResourceMLCrashCourse   = "Machine Learning Basics: https://developers.google.com/machine-learning/crash-course"
)

// hardwareFallback names the learner's hardware when no description was given.
const hardwareFallback = "hardware"

// Advise evaluates the rules against p and topic. A nil profile yields an
// empty bundle without the default tip and exercise.
func Advise(p *profile.Background, topic string) Bundle {
	b := Bundle{Tips: []string{}, Exercises: []string{}, Resources: []string{}}
	if p == nil {
		return b
	}

	t := strings.ToLower(topic)

	switch p.ProgrammingExperience {
	case profile.ProgrammingBeginner:
		b.Tips = append(b.Tips, TipBeginnerUnderstand, TipBeginnerTypeOut)
		b.Exercises = append(b.Exercises, ExerciseBeginnerModify)
	case profile.ProgrammingAdvanced, profile.ProgrammingExpert:
		b.Tips = append(b.Tips, TipAdvancedOptimize)
		b.Exercises = append(b.Exercises, ExerciseAdvancedExtend)
	}

	if strings.Contains(t, "ros") {
		switch p.ROSExperience {
		case profile.ExperienceNone:
			b.Tips = append(b.Tips, TipROSLearningCurve)
			b.Resources = append(b.Resources, ResourceROSTutorials)
		case profile.ExperienceAdvanced:
			b.Tips = append(b.Tips, TipROSSkipBasics)
		}
	}

	// An unanswered hardware question fires neither branch.
	if owns, answered := p.OwnsHardware(); answered && owns {
		b.Exercises = append(b.Exercises, "🔧 Try implementing this on your "+hardwareName(p))
		b.Tips = append(b.Tips, TipHardwareTest)
	} else if answered {
		b.Tips = append(b.Tips, TipSimulation)
		b.Resources = append(b.Resources, ResourceGazeboTutorials)
	}

	if p.AIMLExperience == profile.ExperienceNone && (strings.Contains(t, "ai") || strings.Contains(t, "ml")) {
		b.Tips = append(b.Tips, TipAIMLStepByStep)
		b.Resources = append(b.Resources, ResourceMLCrashCourse)
	}

	if p.HasGoal(profile.GoalComputerVision) && strings.Contains(t, "vision") {
		b.Tips = append(b.Tips, TipVisionGoal)
		b.Exercises = append(b.Exercises, ExerciseVisionExtend)
	}

	if p.HasGoal(profile.GoalSimulation) && (strings.Contains(t, "gazebo") || strings.Contains(t, "isaac")) {
		b.Tips = append(b.Tips, TipSimulationGoal)
	}

	switch p.PreferredDifficulty {
	case profile.DifficultyBeginner:
		b.Tips = append(b.Tips, TipPreferBeginner)
	case profile.DifficultyAdvanced:
		b.Tips = append(b.Tips, TipPreferAdvanced)
	}

	if len(b.Tips) == 0 {
		b.Tips = append(b.Tips, TipDefault)
	}
	if len(b.Exercises) == 0 {
		b.Exercises = append(b.Exercises, ExerciseDefault)
	}

	return b
}

func hardwareName(p *profile.Background) string {
	if d := strings.TrimSpace(p.HardwareDescription); d != "" {
		return d
	}
	return hardwareFallback
}

// Summary is the "based on" line shown under the advice.
type Summary struct {
	ProgrammingExperience profile.ProgrammingExperience `json:"programmingExperience,omitempty"`
	ROSExperience         profile.ExperienceLevel       `json:"rosExperience,omitempty"`
}

// Summarize returns the profile fields the advice is mostly keyed on.
func Summarize(p *profile.Background) Summary {
	if p == nil {
		return Summary{}
	}
	return Summary{ProgrammingExperience: p.ProgrammingExperience, ROSExperience: p.ROSExperience}
}
