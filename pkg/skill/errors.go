package skill

import "github.com/jguan/autoskill/pkg/domain"

// Skill registry errors.
var (
	ErrSkillNotFound   = domain.NewDomainError("skill", domain.ErrCodeSkillNotFound, "skill not found")
	ErrSkillInvalid    = domain.NewDomainError("skill", domain.ErrCodeSkillInvalid, "skill definition is invalid")
	ErrSkillDirMissing = domain.NewDomainError("skill", domain.ErrCodeSkillDirMissing, "skills directory not found")
	ErrNoFrontMatter   = domain.NewDomainError("skill", domain.ErrCodeSkillInvalid, "skill file has no front-matter")
)
