package profile

// Patch is a partial profile update. Nil fields are left untouched.
type Patch struct {
	Name                  *string                `json:"name,omitempty"`
	ProgrammingExperience *ProgrammingExperience `json:"programmingExperience,omitempty"`
	ProgrammingLanguages  *[]string              `json:"programmingLanguages,omitempty"`
	AIMLExperience        *ExperienceLevel       `json:"aiMlExperience,omitempty"`
	ROSExperience         *ExperienceLevel       `json:"rosExperience,omitempty"`
	RoboticsExperience    *RoboticsExperience    `json:"roboticsExperience,omitempty"`
	HardwareProjects      *[]string              `json:"hardwareProjects,omitempty"`
	HasRoboticsHardware   *bool                  `json:"hasRoboticsHardware,omitempty"`
	HardwareDescription   *string                `json:"hardwareDescription,omitempty"`
	LearningGoals         *[]string              `json:"learningGoals,omitempty"`
	PreferredDifficulty   *Difficulty            `json:"preferredDifficulty,omitempty"`
	OnboardingCompleted   *bool                  `json:"onboardingCompleted,omitempty"`
}

// Validate checks the enum fields present in the patch.
func (p *Patch) Validate() error {
	var b Background
	p.apply(&b)
	return b.Validate()
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return len(p.fields()) == 0
}

// apply merges the patch into b and returns the JSON names of the fields it set.
func (p *Patch) apply(b *Background) []string {
	if p.ProgrammingExperience != nil {
		b.ProgrammingExperience = *p.ProgrammingExperience
	}
	if p.ProgrammingLanguages != nil {
		b.ProgrammingLanguages = *p.ProgrammingLanguages
	}
	if p.AIMLExperience != nil {
		b.AIMLExperience = *p.AIMLExperience
	}
	if p.ROSExperience != nil {
		b.ROSExperience = *p.ROSExperience
	}
	if p.RoboticsExperience != nil {
		b.RoboticsExperience = *p.RoboticsExperience
	}
	if p.HardwareProjects != nil {
		b.HardwareProjects = *p.HardwareProjects
	}
	if p.HasRoboticsHardware != nil {
		v := *p.HasRoboticsHardware
		b.HasRoboticsHardware = &v
	}
	if p.HardwareDescription != nil {
		b.HardwareDescription = *p.HardwareDescription
	}
	if p.LearningGoals != nil {
		b.LearningGoals = *p.LearningGoals
	}
	if p.PreferredDifficulty != nil {
		b.PreferredDifficulty = *p.PreferredDifficulty
	}
	if p.OnboardingCompleted != nil {
		b.OnboardingCompleted = *p.OnboardingCompleted
	}
	return p.fields()
}

func (p *Patch) fields() []string {
	var out []string
	set := func(present bool, name string) {
		if present {
			out = append(out, name)
		}
	}
	set(p.Name != nil, "name")
	set(p.ProgrammingExperience != nil, "programmingExperience")
	set(p.ProgrammingLanguages != nil, "programmingLanguages")
	set(p.AIMLExperience != nil, "aiMlExperience")
	set(p.ROSExperience != nil, "rosExperience")
	set(p.RoboticsExperience != nil, "roboticsExperience")
	set(p.HardwareProjects != nil, "hardwareProjects")
	set(p.HasRoboticsHardware != nil, "hasRoboticsHardware")
	set(p.HardwareDescription != nil, "hardwareDescription")
	set(p.LearningGoals != nil, "learningGoals")
	set(p.PreferredDifficulty != nil, "preferredDifficulty")
	set(p.OnboardingCompleted != nil, "onboardingCompleted")
	return out
}
