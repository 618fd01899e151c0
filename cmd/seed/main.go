package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	envFile         string
	locationCount   int
	employeeCount   int
	upsellCount     int
	dropCollections bool
	randomSeed      int64
}

type collections struct {
	locations     string
	employees     string
	shifts        string
	upsells       string
	menuItems     string
	managerAccess string
}

type locationDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Timezone  string             `bson:"timezone,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type employeeDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	LocationID primitive.ObjectID `bson:"locationId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type shiftDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	EmployeeID primitive.ObjectID `bson:"employeeId"`
	LocationID primitive.ObjectID `bson:"locationId"`
	StartedAt  time.Time          `bson:"startedAt"`
	EndedAt    *time.Time         `bson:"endedAt,omitempty"`
}

type menuItemDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	LocationID primitive.ObjectID `bson:"locationId"`
	Category   string             `bson:"category,omitempty"`
	Icon       string             `bson:"icon,omitempty"`
	PriceSEK   int                `bson:"priceSek,omitempty"`
	Active     bool               `bson:"active"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type lineEntryDocument struct {
	MenuItemID primitive.ObjectID `bson:"menuItemId"`
	Quantity   int                `bson:"quantity"`
}

type transactionDocument struct {
	ID          primitive.ObjectID  `bson:"_id"`
	EmployeeID  primitive.ObjectID  `bson:"employeeId"`
	LocationID  primitive.ObjectID  `bson:"locationId"`
	ShiftID     *primitive.ObjectID `bson:"shiftId,omitempty"`
	OrderNumber string              `bson:"orderNumber,omitempty"`
	Lines       []lineEntryDocument `bson:"lines"`
	CreatedAt   time.Time           `bson:"createdAt"`
}

type managerAccessDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	LocationID primitive.ObjectID `bson:"locationId"`
	Password   string             `bson:"password"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

var locationNames = []string{
	"McDonald's Kungsgatan",
	"McDonald's Nordstan",
	"McDonald's Centralstationen",
	"McDonald's Gamla Stan",
	"McDonald's Triangeln",
}

var employeeNames = []string{
	"Elsa Lindqvist", "Hugo Bergström", "Maja Ekström", "William Sandberg",
	"Alice Nyström", "Lucas Holmgren", "Vera Åkesson", "Oscar Lundin",
	"Ebba Sjögren", "Liam Dahlberg", "Wilma Norén", "Elias Forsberg",
}

type menuSeedItem struct {
	name     string
	category string
	icon     string
	priceSEK int
}

// The default upsell vocabulary, matching the grid the staff screen shows.
var menuSeedItems = []menuSeedItem{
	{"Äppelpaj", "Snacks & Sides", "🥧", 15},
	{"Plusmeny", "Meny", "⬆️", 14},
	{"Dipsås", "Snacks & Sides", "🥫", 8},
	{"Kaffe", "Varm dryck", "☕", 20},
	{"Te", "Varm dryck", "🍵", 18},
	{"Varm choklad", "Varm dryck", "🍫", 24},
	{"Milkshake", "Kall dryck", "🥤", 32},
	{"McFlurry", "Glass", "🍦", 35},
	{"Sundae", "Glass", "🍨", 25},
	{"Extra ost", "Extra", "🧀", 7},
	{"Bacon", "Extra", "🥓", 10},
}

func main() {
	opts := parseFlags()

	if opts.envFile != "" {
		if err := loadEnvFile(opts.envFile); err != nil {
			log.Fatalf("failed to load env file: %v", err)
		}
	}

	cfg := collections{
		locations:     envOrDefault("LOCATION_COLLECTION", "locations"),
		employees:     envOrDefault("EMPLOYEE_COLLECTION", "employees"),
		shifts:        envOrDefault("SHIFT_COLLECTION", "shifts"),
		upsells:       envOrDefault("TRANSACTION_COLLECTION", "upsells"),
		menuItems:     envOrDefault("MENU_ITEM_COLLECTION", "menu_items"),
		managerAccess: envOrDefault("MANAGER_ACCESS_COLLECTION", "manager_access"),
	}

	mongoURI := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	dbName := envOrDefault("MONGO_DB", "upsell-board")
	timezone := envOrDefault("TIMEZONE", "Europe/Stockholm")
	managerPassword := envOrDefault("SEED_MANAGER_PASSWORD", "chef123")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Fatalf("failed to load timezone %s: %v", timezone, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(dbName)

	if opts.dropCollections {
		dropAll(ctx, db, cfg)
		log.Printf("dropped existing collections")
	}

	if err := ensureIndexes(ctx, db, cfg); err != nil {
		log.Fatalf("index creation failed: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	now := time.Now().In(loc)

	locationDocs := generateLocations(opts.locationCount, timezone, now)
	if err := insertMany(ctx, db.Collection(cfg.locations), toAnySlice(locationDocs)); err != nil {
		log.Fatalf("location insert failed: %v", err)
	}

	menuDocs := generateMenuItems(locationDocs, now)
	if err := insertMany(ctx, db.Collection(cfg.menuItems), toAnySlice(menuDocs)); err != nil {
		log.Fatalf("menu item insert failed: %v", err)
	}

	employeeDocs := generateEmployees(rng, locationDocs, opts.employeeCount, now)
	if err := insertMany(ctx, db.Collection(cfg.employees), toAnySlice(employeeDocs)); err != nil {
		log.Fatalf("employee insert failed: %v", err)
	}

	shiftDocs := generateShifts(rng, employeeDocs, now)
	if err := insertMany(ctx, db.Collection(cfg.shifts), toAnySlice(shiftDocs)); err != nil {
		log.Fatalf("shift insert failed: %v", err)
	}

	upsellDocs := generateUpsells(rng, shiftDocs, menuDocs, opts.upsellCount, now)
	if len(upsellDocs) > 0 {
		if err := insertMany(ctx, db.Collection(cfg.upsells), toAnySlice(upsellDocs)); err != nil {
			log.Fatalf("upsell insert failed: %v", err)
		}
	}

	managerDocs := generateManagerAccess(locationDocs, managerPassword, now)
	if err := insertMany(ctx, db.Collection(cfg.managerAccess), toAnySlice(managerDocs)); err != nil {
		log.Fatalf("manager access insert failed: %v", err)
	}

	log.Printf("seed done: locations=%d employees=%d shifts=%d menuItems=%d upsells=%d",
		len(locationDocs), len(employeeDocs), len(shiftDocs), len(menuDocs), len(upsellDocs))
	log.Printf("Mongo: %s / %s (manager password: %s)", mongoURI, dbName, managerPassword)
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.envFile, "env-file", "", "optional env file to load before reading configuration")
	flag.IntVar(&opts.locationCount, "locations", 2, "number of locations to generate")
	flag.IntVar(&opts.employeeCount, "employees", 8, "number of employees per location")
	flag.IntVar(&opts.upsellCount, "upsells", 60, "number of upsell transactions per location for today")
	flag.BoolVar(&opts.dropCollections, "drop", true, "drop existing collections before inserting")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed for reproducible runs")
	flag.Parse()

	if opts.locationCount <= 0 || opts.locationCount > len(locationNames) {
		log.Fatalf("locations must be between 1 and %d", len(locationNames))
	}
	if opts.employeeCount <= 0 || opts.employeeCount > len(employeeNames) {
		log.Fatalf("employees must be between 1 and %d", len(employeeNames))
	}
	if opts.upsellCount < 0 {
		opts.upsellCount = 0
	}
	return opts
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func dropAll(ctx context.Context, db *mongo.Database, cfg collections) {
	for _, name := range []string{
		cfg.locations, cfg.employees, cfg.shifts, cfg.upsells, cfg.menuItems, cfg.managerAccess,
	} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			log.Printf("WARN: dropping collection %s failed: %v", name, err)
		}
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database, cfg collections) error {
	indexSets := map[string][]mongo.IndexModel{
		cfg.employees: {
			{
				Keys:    bson.D{{Key: "locationId", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetName("uniq_employee_location_name").SetUnique(true),
			},
		},
		cfg.shifts: {
			{
				Keys:    bson.D{{Key: "locationId", Value: 1}, {Key: "endedAt", Value: 1}},
				Options: options.Index().SetName("idx_shift_location_open"),
			},
			{
				Keys:    bson.D{{Key: "employeeId", Value: 1}},
				Options: options.Index().SetName("idx_shift_employee"),
			},
		},
		cfg.upsells: {
			{
				Keys:    bson.D{{Key: "locationId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("idx_upsell_location_createdAt"),
			},
		},
		cfg.menuItems: {
			{
				Keys:    bson.D{{Key: "locationId", Value: 1}, {Key: "active", Value: 1}},
				Options: options.Index().SetName("idx_menu_item_location_active"),
			},
		},
		cfg.managerAccess: {
			{
				Keys:    bson.D{{Key: "locationId", Value: 1}},
				Options: options.Index().SetName("uniq_manager_access_location").SetUnique(true),
			},
		},
	}

	for name, models := range indexSets {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
	}
	return nil
}

func generateLocations(count int, timezone string, now time.Time) []locationDocument {
	docs := make([]locationDocument, 0, count)
	for i := 0; i < count; i++ {
		docs = append(docs, locationDocument{
			ID:        primitive.NewObjectID(),
			Name:      locationNames[i],
			Timezone:  timezone,
			CreatedAt: now.Add(-30 * 24 * time.Hour),
		})
	}
	return docs
}

func generateMenuItems(locations []locationDocument, now time.Time) []menuItemDocument {
	docs := make([]menuItemDocument, 0, len(locations)*len(menuSeedItems))
	for _, location := range locations {
		for _, item := range menuSeedItems {
			docs = append(docs, menuItemDocument{
				ID:         primitive.NewObjectID(),
				Name:       item.name,
				LocationID: location.ID,
				Category:   item.category,
				Icon:       item.icon,
				PriceSEK:   item.priceSEK,
				Active:     true,
				CreatedAt:  now.Add(-30 * 24 * time.Hour),
			})
		}
	}
	return docs
}

func generateEmployees(rng *rand.Rand, locations []locationDocument, perLocation int, now time.Time) []employeeDocument {
	docs := make([]employeeDocument, 0, len(locations)*perLocation)
	for _, location := range locations {
		names := append([]string(nil), employeeNames...)
		rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
		for i := 0; i < perLocation; i++ {
			docs = append(docs, employeeDocument{
				ID:         primitive.NewObjectID(),
				Name:       names[i],
				LocationID: location.ID,
				CreatedAt:  now.Add(-time.Duration(rng.Intn(20)+1) * 24 * time.Hour),
			})
		}
	}
	return docs
}

// generateShifts clocks roughly two thirds of the staff in today; the rest
// get a closed shift earlier in the day so the admin stats still count them.
func generateShifts(rng *rand.Rand, employees []employeeDocument, now time.Time) []shiftDocument {
	docs := make([]shiftDocument, 0, len(employees))
	for _, employee := range employees {
		startedAt := now.Add(-time.Duration(rng.Intn(6*60)+30) * time.Minute)
		shift := shiftDocument{
			ID:         primitive.NewObjectID(),
			EmployeeID: employee.ID,
			LocationID: employee.LocationID,
			StartedAt:  startedAt,
		}
		if rng.Intn(3) == 0 {
			endedAt := startedAt.Add(time.Duration(rng.Intn(3*60)+60) * time.Minute)
			if endedAt.After(now) {
				endedAt = now.Add(-time.Minute)
			}
			shift.EndedAt = &endedAt
		}
		docs = append(docs, shift)
	}
	return docs
}

func generateUpsells(rng *rand.Rand, shifts []shiftDocument, menuItems []menuItemDocument, perLocation int, now time.Time) []transactionDocument {
	shiftsByLocation := make(map[primitive.ObjectID][]shiftDocument)
	for _, shift := range shifts {
		shiftsByLocation[shift.LocationID] = append(shiftsByLocation[shift.LocationID], shift)
	}
	itemsByLocation := make(map[primitive.ObjectID][]menuItemDocument)
	for _, item := range menuItems {
		itemsByLocation[item.LocationID] = append(itemsByLocation[item.LocationID], item)
	}

	var docs []transactionDocument
	for locationID, locationShifts := range shiftsByLocation {
		items := itemsByLocation[locationID]
		if len(items) == 0 {
			continue
		}
		for i := 0; i < perLocation; i++ {
			shift := locationShifts[rng.Intn(len(locationShifts))]

			lineCount := rng.Intn(2) + 1
			lines := make([]lineEntryDocument, 0, lineCount)
			for j := 0; j < lineCount; j++ {
				lines = append(lines, lineEntryDocument{
					MenuItemID: items[rng.Intn(len(items))].ID,
					Quantity:   rng.Intn(3) + 1,
				})
			}

			createdAt := shift.StartedAt.Add(time.Duration(rng.Intn(120)+1) * time.Minute)
			if shift.EndedAt != nil && createdAt.After(*shift.EndedAt) {
				createdAt = *shift.EndedAt
			}
			if createdAt.After(now) {
				createdAt = now
			}

			shiftID := shift.ID
			docs = append(docs, transactionDocument{
				ID:          primitive.NewObjectID(),
				EmployeeID:  shift.EmployeeID,
				LocationID:  locationID,
				ShiftID:     &shiftID,
				OrderNumber: fmt.Sprintf("%02d", rng.Intn(100)),
				Lines:       lines,
				CreatedAt:   createdAt,
			})
		}
	}
	return docs
}

func generateManagerAccess(locations []locationDocument, password string, now time.Time) []managerAccessDocument {
	docs := make([]managerAccessDocument, 0, len(locations))
	for _, location := range locations {
		docs = append(docs, managerAccessDocument{
			ID:         primitive.NewObjectID(),
			LocationID: location.ID,
			Password:   password,
			UpdatedAt:  now,
		})
	}
	return docs
}

func insertMany(ctx context.Context, collection *mongo.Collection, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := collection.InsertMany(ctx, docs)
	return err
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
