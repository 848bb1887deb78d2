package postgres

import (
	"gorm.io/gorm"

	"github.com/ieltsprep/exam-service/internal/repositories"
)

type repository struct {
	test       repositories.TestRepository
	result     repositories.ResultRepository
	curriculum repositories.CurriculumRepository
}

// NewRepository wires the per-aggregate repositories over a shared
// database handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		test:       NewTestRepository(db),
		result:     NewResultRepository(db),
		curriculum: NewCurriculumRepository(db),
	}
}

func (r *repository) Test() repositories.TestRepository             { return r.test }
func (r *repository) Result() repositories.ResultRepository         { return r.result }
func (r *repository) Curriculum() repositories.CurriculumRepository { return r.curriculum }
