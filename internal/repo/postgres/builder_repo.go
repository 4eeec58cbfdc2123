package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	buildersvc "github.com/vjzest/PropCIDBack/internal/services/builders"
)

type BuilderRepo struct {
	pool *pgxpool.Pool
}

func NewBuilderRepo(pool *pgxpool.Pool) *BuilderRepo {
	return &BuilderRepo{pool: pool}
}

// Upsert merges the given fields into the builder's row. NULL parameters
// keep the stored value, mirroring a merge-style document update.
func (r *BuilderRepo) Upsert(ctx context.Context, uid string, profile buildersvc.Profile, profileImageURL *string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO builders (
	uid, company_name, email, phone, address, registration_number, about,
	website, total_revenue, years_of_experience, completed_projects,
	active_projects, team_size, specialties, certifications, awards,
	profile_image, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
ON CONFLICT (uid) DO UPDATE SET
	company_name        = COALESCE(EXCLUDED.company_name, builders.company_name),
	email               = COALESCE(EXCLUDED.email, builders.email),
	phone               = COALESCE(EXCLUDED.phone, builders.phone),
	address             = COALESCE(EXCLUDED.address, builders.address),
	registration_number = COALESCE(EXCLUDED.registration_number, builders.registration_number),
	about               = COALESCE(EXCLUDED.about, builders.about),
	website             = COALESCE(EXCLUDED.website, builders.website),
	total_revenue       = COALESCE(EXCLUDED.total_revenue, builders.total_revenue),
	years_of_experience = COALESCE(EXCLUDED.years_of_experience, builders.years_of_experience),
	completed_projects  = COALESCE(EXCLUDED.completed_projects, builders.completed_projects),
	active_projects     = COALESCE(EXCLUDED.active_projects, builders.active_projects),
	team_size           = COALESCE(EXCLUDED.team_size, builders.team_size),
	specialties         = COALESCE(EXCLUDED.specialties, builders.specialties),
	certifications      = COALESCE(EXCLUDED.certifications, builders.certifications),
	awards              = COALESCE(EXCLUDED.awards, builders.awards),
	profile_image       = COALESCE(EXCLUDED.profile_image, builders.profile_image),
	updated_at          = NOW()
`,
		uid,
		profile.CompanyName,
		profile.Email,
		profile.Phone,
		profile.Address,
		profile.RegistrationNumber,
		profile.About,
		profile.Website,
		profile.TotalRevenue,
		profile.YearsOfExperience,
		profile.CompletedProjects,
		profile.ActiveProjects,
		profile.TeamSize,
		profile.Specialties,
		profile.Certifications,
		profile.Awards,
		profileImageURL,
	)
	if err != nil {
		return fmt.Errorf("upsert builder profile: %w", err)
	}

	return nil
}
