package store

import (
	"time"

	"github.com/dailypost/dailypost/models"
)

// DefaultPosts is the collection seeded into an empty namespace, two posts
// per category, all dated now.
func DefaultPosts(now time.Time) []models.Post {
	date := now.UTC()
	return []models.Post{
		{
			ID:       1,
			Title:    "Bride-to-Be Sucker-Punched at Her Bachelorette Party",
			Excerpt:  "Canada Rinaldi left her bachelorette party in Dallas, Texas on a stretcher, after getting punched by a complete stranger. Rinaldi was rendered unconscious; she suffered a concussion, broken nose, three...",
			Content:  "Canada Rinaldi left her bachelorette party in Dallas, Texas on a stretcher, after getting punched by a complete stranger. Rinaldi was rendered unconscious; she suffered a concussion, broken nose, three fractured teeth, and severe facial bruising. The incident occurred at approximately 11:30 PM outside a popular downtown Dallas venue where Rinaldi was celebrating with her bridal party.",
			Category: models.CategoryNews,
			Author:   "Admin",
			Date:     date,
			ReadTime: "3 min read",
			Featured: true,
		},
		{
			ID:       2,
			Title:    "At least 19 dead in Kentucky, nearly 200,000 left without power after weekend storms",
			Excerpt:  "Kentucky's governor announced the state would look into emergency housing options after storms and severe weather killed at least 19 people in Kentucky. 'We are hard at work this morning...'",
			Content:  "Kentucky's governor announced the state would look into emergency housing options after storms and severe weather killed at least 19 people in Kentucky. We are hard at work this morning to assess the damage and coordinate our response efforts. The devastating storms swept through the state over the weekend, bringing with them destructive winds, heavy rainfall, and multiple tornadoes.",
			Category: models.CategoryNews,
			Author:   "Kentucky",
			Date:     date,
			ReadTime: "4 min read",
		},
		{
			ID:       3,
			Title:    "NBA Finals Game 7 Tonight: Championship on the Line",
			Excerpt:  "The most anticipated Game 7 in NBA history tips off tonight as two powerhouse teams battle for the championship title. Both teams have everything to play for in what promises to be an epic showdown...",
			Content:  "The most anticipated Game 7 in NBA history tips off tonight as two powerhouse teams battle for the championship title. Both teams have everything to play for in what promises to be an epic showdown at the sold-out arena. The series has been a back-and-forth thriller, with neither team able to gain a decisive advantage.",
			Category: models.CategorySport,
			Author:   "Admin",
			Date:     date,
			ReadTime: "3 min read",
			Featured: true,
		},
		{
			ID:       4,
			Title:    "Senate Passes Landmark Healthcare Reform Bill",
			Excerpt:  "In a historic 52-48 vote, the Senate passed comprehensive healthcare reform legislation that will expand coverage to millions of Americans. The bill now heads to the House for final approval...",
			Content:  "In a historic 52-48 vote, the Senate passed comprehensive healthcare reform legislation that will expand coverage to millions of Americans. The bill now heads to the House for final approval before reaching the President's desk. The legislation includes provisions for lowering prescription drug costs, expanding Medicare benefits, and creating new healthcare access programs.",
			Category: models.CategoryPolitics,
			Author:   "Admin",
			Date:     date,
			ReadTime: "4 min read",
		},
		{
			ID:       5,
			Title:    "World Cup Qualifier: Team USA Advances to Finals",
			Excerpt:  "Team USA secured their spot in the World Cup finals with a dramatic 3-2 victory over Brazil in yesterday's semifinal match. The win marks the first time in 12 years that the US team has reached this stage...",
			Content:  "Team USA secured their spot in the World Cup finals with a dramatic 3-2 victory over Brazil in yesterday's semifinal match. The win marks the first time in 12 years that the US team has reached this stage of the tournament. The match was a rollercoaster of emotions, with Brazil taking an early 2-0 lead in the first half.",
			Category: models.CategorySport,
			Author:   "Admin",
			Date:     date,
			ReadTime: "3 min read",
		},
		{
			ID:       6,
			Title:    "Presidential Debate Draws Record 85 Million Viewers",
			Excerpt:  "Last night's presidential debate shattered viewership records with 85 million Americans tuning in to watch the candidates clash on key issues. The heated exchange covered healthcare, economy, and foreign policy...",
			Content:  "Last night's presidential debate shattered viewership records with 85 million Americans tuning in to watch the candidates clash on key issues. The heated exchange covered healthcare, economy, and foreign policy in what many are calling the most consequential debate in recent history. The 90-minute debate was marked by sharp disagreements on healthcare policy.",
			Category: models.CategoryPolitics,
			Author:   "Admin",
			Date:     date,
			ReadTime: "4 min read",
			Featured: true,
		},
	}
}
