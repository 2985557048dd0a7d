package generator

import "github.com/nimasrn/card-gateway/internal/model"

var merchantNames = []string{
	// retail
	"Hamleys", "Amazon", "Target", "Walmart", "Best Buy", "Costco", "Home Depot", "IKEA",
	"Zara", "H&M", "Nike", "Adidas", "Apple Store", "GameStop", "CVS Pharmacy", "Walgreens",

	// food
	"McDonald's", "Starbucks", "Subway", "Pizza Hut", "Domino's", "KFC", "Burger King",
	"Taco Bell", "Chipotle", "Olive Garden", "Panera Bread", "Dunkin'", "Tim Hortons",
	"Whole Foods", "Trader Joe's",

	// transport
	"Uber", "Lyft", "Shell", "BP Gas Station", "Chevron", "Exxon", "Metro Transit",
	"Parking Meter", "Airport Parking", "Taxi Service",

	// entertainment
	"Netflix", "Spotify", "Disney+", "HBO Max", "AMC Theaters", "Regal Cinemas", "Steam",
	"PlayStation Store", "Xbox Live", "YouTube Premium",

	// bills
	"Electric Company", "Water Authority", "Internet Provider", "Mobile Service",
	"Insurance Premium", "Gym Membership", "Library Fine",

	// travel
	"Hilton Hotels", "Marriott", "Airbnb", "Booking.com", "Southwest Airlines",
	"Delta Airlines", "Car Rental", "Hotel Booking",

	// personal
	"Pharmacy", "Doctor Visit", "Dentist", "Veterinarian", "Hair Salon", "Spa Treatment",
	"Dry Cleaning",
}

const (
	CategoryShopping      = "Shopping"
	CategoryFoodDining    = "Food & Dining"
	CategoryTransport     = "Transportation"
	CategoryEntertainment = "Entertainment"
	CategoryGasFuel       = "Gas & Fuel"
	CategoryGroceries     = "Groceries"
	CategoryHomeGarden    = "Home & Garden"
	CategoryTechnology    = "Technology"
	CategoryHealthcare    = "Healthcare"
	CategoryTravel        = "Travel"
	CategoryUtilities     = "Utilities"
	CategorySubscriptions = "Subscriptions"
	CategoryPersonalCare  = "Personal Care"
	CategoryEducation     = "Education"
	CategoryInsurance     = "Insurance"
	CategoryAutomotive    = "Automotive"
	CategoryPetCare       = "Pet Care"
)

var categories = []string{
	CategoryShopping, CategoryFoodDining, CategoryTransport, CategoryEntertainment,
	CategoryGasFuel, CategoryGroceries, CategoryHomeGarden, CategoryTechnology,
	CategoryHealthcare, CategoryTravel, CategoryUtilities, CategorySubscriptions,
	CategoryPersonalCare, CategoryEducation, CategoryInsurance, CategoryAutomotive,
	CategoryPetCare,
}

var iconTypes = []model.IconType{
	model.IconCard, model.IconPlane, model.IconMegaphone, model.IconShopping,
}

// amountRange is the magnitude range of a category: [min, min+span).
type amountRange struct {
	min  int
	span int
}

var defaultAmountRange = amountRange{min: 20, span: 200}

var categoryAmounts = map[string]amountRange{
	CategoryGroceries:     {15, 80},
	CategoryFoodDining:    {15, 80},
	CategoryGasFuel:       {25, 60},
	CategoryShopping:      {50, 300},
	CategoryTechnology:    {50, 300},
	CategoryTravel:        {200, 800},
	CategoryUtilities:     {25, 150},
	CategorySubscriptions: {25, 150},
	CategoryHealthcare:    {50, 250},
}

func rangeFor(category string) amountRange {
	if r, ok := categoryAmounts[category]; ok {
		return r
	}
	return defaultAmountRange
}

// Merchants returns a copy of the merchant vocabulary.
func Merchants() []string {
	return append([]string(nil), merchantNames...)
}

// Categories returns a copy of the category vocabulary.
func Categories() []string {
	return append([]string(nil), categories...)
}
