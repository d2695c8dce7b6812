package advisory

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/profile"
)

func TestAdvise_NilProfile_EmptyBundle(t *testing.T) {
	t.Parallel()

	got := Advise(nil, "Introduction to ROS 2")
	want := Bundle{Tips: []string{}, Exercises: []string{}, Resources: []string{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Advise(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_AllAbsent_DefaultsOnly(t *testing.T) {
	t.Parallel()

	for _, topic := range []string{"", "ROS 2 Nodes", "Isaac Sim vision pipelines with AI"} {
		got := Advise(&profile.Background{}, topic)
		want := Bundle{Tips: []string{TipDefault}, Exercises: []string{ExerciseDefault}, Resources: []string{}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Advise(absent, %q) mismatch (-want +got):\n%s", topic, diff)
		}
	}
}

func TestAdvise_BeginnerROSNovice(t *testing.T) {
	t.Parallel()

	p := &profile.Background{
		ProgrammingExperience: profile.ProgrammingBeginner,
		ROSExperience:         profile.ExperienceNone,
		HasRoboticsHardware:   profile.Bool(false),
	}
	got := Advise(p, "Introduction to ROS 2")
	want := Bundle{
		Tips:      []string{TipBeginnerUnderstand, TipBeginnerTypeOut, TipROSLearningCurve, TipSimulation},
		Exercises: []string{ExerciseBeginnerModify},
		Resources: []string{ResourceROSTutorials, ResourceGazeboTutorials},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_AdvancedROS_SkipTipOnly(t *testing.T) {
	t.Parallel()

	p := &profile.Background{ROSExperience: profile.ExperienceAdvanced}
	got := Advise(p, "ros2 control")
	if diff := cmp.Diff([]string{TipROSSkipBasics}, got.Tips); diff != "" {
		t.Errorf("tips mismatch (-want +got):\n%s", diff)
	}
	if len(got.Resources) != 0 {
		t.Errorf("resources = %v; want none", got.Resources)
	}
}

func TestAdvise_ROSRulesNeedROSTopic(t *testing.T) {
	t.Parallel()

	p := &profile.Background{ROSExperience: profile.ExperienceNone}
	got := Advise(p, "Kinematics")
	if diff := cmp.Diff([]string{TipDefault}, got.Tips); diff != "" {
		t.Errorf("tips mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_ExpertWithHardware(t *testing.T) {
	t.Parallel()

	p := &profile.Background{
		ProgrammingExperience: profile.ProgrammingExpert,
		HasRoboticsHardware:   profile.Bool(true),
		HardwareDescription:   "Unitree Go2",
		PreferredDifficulty:   profile.DifficultyAdvanced,
	}
	got := Advise(p, "Locomotion")
	want := Bundle{
		Tips:      []string{TipAdvancedOptimize, TipHardwareTest, TipPreferAdvanced},
		Exercises: []string{ExerciseAdvancedExtend, "🔧 Try implementing this on your Unitree Go2"},
		Resources: []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_HardwareWithoutDescription(t *testing.T) {
	t.Parallel()

	p := &profile.Background{HasRoboticsHardware: profile.Bool(true), HardwareDescription: "  "}
	got := Advise(p, "")
	if diff := cmp.Diff([]string{"🔧 Try implementing this on your hardware"}, got.Exercises); diff != "" {
		t.Errorf("exercises mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_GoalsAndAIML(t *testing.T) {
	t.Parallel()

	p := &profile.Background{
		AIMLExperience:      profile.ExperienceNone,
		LearningGoals:       []string{profile.GoalComputerVision, profile.GoalSimulation},
		PreferredDifficulty: profile.DifficultyBeginner,
	}
	got := Advise(p, "AI Vision models in ISAAC Sim")
	want := Bundle{
		Tips:      []string{TipAIMLStepByStep, TipVisionGoal, TipSimulationGoal, TipPreferBeginner},
		Exercises: []string{ExerciseVisionExtend},
		Resources: []string{ResourceMLCrashCourse},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_GoalMatchIsExact(t *testing.T) {
	t.Parallel()

	p := &profile.Background{LearningGoals: []string{"computer vision"}}
	got := Advise(p, "vision")
	if diff := cmp.Diff([]string{TipDefault}, got.Tips); diff != "" {
		t.Errorf("tips mismatch (-want +got):\n%s", diff)
	}
}

func TestAdvise_Deterministic(t *testing.T) {
	t.Parallel()

	p := &profile.Background{ProgrammingExperience: profile.ProgrammingBeginner, HasRoboticsHardware: profile.Bool(false)}
	first := Advise(p, "ROS")
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Advise(p, "ROS")); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	if got := Summarize(nil); got != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v; want zero", got)
	}
	p := &profile.Background{ProgrammingExperience: profile.ProgrammingAdvanced, ROSExperience: profile.ExperienceBasic}
	want := Summary{ProgrammingExperience: profile.ProgrammingAdvanced, ROSExperience: profile.ExperienceBasic}
	if got := Summarize(p); got != want {
		t.Errorf("Summarize() = %+v; want %+v", got, want)
	}
}
