package listquery

// Course listing parameters
const (
	Level      = "level"
	CategoryID = "categoryId"
	MinPrice   = "minPrice"
	MaxPrice   = "maxPrice"
	MinRating  = "minRating"
	Language   = "language"
)

// Admin application table parameters
const (
	Status = "status"
	SortBy = "sortBy"
)

// Courses is the schema of the course browsing page
var Courses = NewSchema(append(Paging(12),
	Field{Name: Level, Kind: KindEnum, Values: []string{"BEGINNER", "INTERMEDIATE", "ADVANCED", "ALL_LEVELS"}},
	Field{Name: CategoryID, Kind: KindInt, Min: Bound(1)},
	Field{Name: Keyword, Kind: KindString},
	Field{Name: MinPrice, Kind: KindFloat, Min: Bound(0)},
	Field{Name: MaxPrice, Kind: KindFloat, Min: Bound(0)},
	Field{Name: MinRating, Kind: KindFloat, Min: Bound(0), Max: Bound(5)},
	Field{Name: Language, Kind: KindString},
)...).WithRange(MinPrice, MaxPrice)

// Registrations is the schema of the admin instructor application table
var Registrations = NewSchema(append(Paging(10),
	Field{Name: Status, Kind: KindEnum, Values: []string{"PENDING", "APPROVED", "REJECTED"}},
	Field{Name: Keyword, Kind: KindString},
	Field{Name: SortBy, Kind: KindEnum, Default: "createdAt", Values: []string{"createdAt", "fullName", "status"}},
)...)
