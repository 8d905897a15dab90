package tmdb

import "strconv"

// SearchMoviesResponse is the response from TMDB movie search.
type SearchMoviesResponse struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// MovieResult is a movie from TMDB search results or credit listings.
type MovieResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
}

// Year extracts the release year, or 0 when unknown.
func (m MovieResult) Year() int {
	return yearFromDate(m.ReleaseDate)
}

// SearchPersonResponse is the response from TMDB person search.
type SearchPersonResponse struct {
	Page         int            `json:"page"`
	Results      []PersonResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// PersonResult is a person from TMDB search results.
type PersonResult struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Popularity         float64 `json:"popularity"`
	KnownForDepartment string  `json:"known_for_department"`
}

// PersonCredits is the response from TMDB /person/{id}/movie_credits.
type PersonCredits struct {
	ID   int          `json:"id"`
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// CastCredit is a single acting credit in a filmography.
type CastCredit struct {
	MovieResult
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewCredit is a single crew credit in a filmography.
type CrewCredit struct {
	MovieResult
	Job        string `json:"job"`
	Department string `json:"department"`
}

// MovieDetails is the detailed movie info from TMDB, with credits appended.
type MovieDetails struct {
	ID               int              `json:"id"`
	Title            string           `json:"title"`
	OriginalTitle    string           `json:"original_title"`
	Overview         string           `json:"overview"`
	ReleaseDate      string           `json:"release_date"`
	PosterPath       *string          `json:"poster_path"`
	Popularity       float64          `json:"popularity"`
	Runtime          int              `json:"runtime"`
	OriginalLanguage string           `json:"original_language"`
	SpokenLanguages  []SpokenLanguage `json:"spoken_languages"`
	Genres           []Genre          `json:"genres"`
	Credits          *Credits         `json:"credits,omitempty"`
}

// Year extracts the release year, or 0 when unknown.
func (m MovieDetails) Year() int {
	return yearFromDate(m.ReleaseDate)
}

// SpokenLanguage is a spoken language entry from movie details.
type SpokenLanguage struct {
	Iso6391 string `json:"iso_639_1"`
	Name    string `json:"name"`
}

// Genre represents a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits contains cast and crew people from the
// append_to_response=credits payload of movie details.
type Credits struct {
	Cast []CreditCast `json:"cast"`
	Crew []CreditCrew `json:"crew"`
}

// CreditCast is a cast member of a movie.
type CreditCast struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CreditCrew is a crew member of a movie.
type CreditCrew struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// ErrorResponse is an error from the TMDB API.
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}

func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}
