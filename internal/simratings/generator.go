package simratings

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/classrank/classrank/pkg/logger"
	"github.com/google/uuid"
)

// Constants for random number generation.
const (
	starTemperamentDivisor = 6
)

// Constants for temperament cases. Each teacher is assigned a lasting
// temperament so the resulting averages spread out instead of clustering
// around 3.0.
const (
	caseBeloved    = 0
	caseLiked      = 1
	caseMixed      = 2
	caseDisliked   = 3
	casePolarizing = 4
	caseUniform    = 5
)

// randomInt returns a random int in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateRatings creates the configured number of rating submissions
// over a fixed teacher and submitter population. Reusing submitters
// within the run intentionally produces same-week overwrites.
func generateRatings(ctx context.Context, config *Config, stats *Stats) ([]Rating, error) {
	logger.Get().Info(ctx, "generating ratings",
		logger.Int("teachers", config.NumTeachers),
		logger.Int("submitters", config.NumSubmitters),
		logger.Int("ratings", config.NumRatings),
	)

	teacherIDs := make([]string, config.NumTeachers)
	temperaments := make([]int64, config.NumTeachers)
	for i := range teacherIDs {
		teacherIDs[i] = "teacher-" + uuid.New().String()
		temperaments[i] = randomInt(starTemperamentDivisor)
	}

	submitterIDs := make([]string, config.NumSubmitters)
	for i := range submitterIDs {
		submitterIDs[i] = uuid.New().String()
	}

	ratings := make([]Rating, config.NumRatings)
	for i := range ratings {
		t := randomInt(int64(config.NumTeachers))
		ratings[i] = Rating{
			TeacherID:   teacherIDs[t],
			Stars:       generateStars(temperaments[t]),
			SubmitterID: submitterIDs[randomInt(int64(config.NumSubmitters))],
		}
	}

	stats.RatingsGenerated = len(ratings)
	logger.Get().Info(ctx, "generated ratings successfully", logger.Int("count", len(ratings)))

	return ratings, nil
}

// generateStars draws a 1-5 star rating from the teacher's temperament.
func generateStars(temperament int64) int {
	switch temperament {
	case caseBeloved:
		// Mostly 5s with the occasional 4
		return 5 - int(randomInt(4)/3)
	case caseLiked:
		// 3 to 5
		return 3 + int(randomInt(3))
	case caseMixed:
		// 2 to 4
		return 2 + int(randomInt(3))
	case caseDisliked:
		// 1 to 3
		return 1 + int(randomInt(3))
	case casePolarizing:
		// 1 or 5
		if randomInt(2) == 0 {
			return 1
		}
		return 5
	case caseUniform:
		return 1 + int(randomInt(5))
	default:
		return 1 + int(randomInt(5))
	}
}
