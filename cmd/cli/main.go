package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "property":
		handleProperty(args)
	case "offer":
		handleOffer(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub property <list|get|search|add|seed>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listProperties(args[1:])
	case "get":
		getProperty(args[1:])
	case "search":
		searchProperties(args[1:])
	case "add":
		addProperty(args[1:])
	case "seed":
		seedProperties(args[1:])
	default:
		fmt.Printf("unknown property command: %s\n", subCmd)
	}
}

func handleOffer(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub offer <create|mine|list|status>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "create":
		createOffer(args[1:])
	case "mine":
		listMyOffers(args[1:])
	case "list":
		listPropertyOffers(args[1:])
	case "status":
		updateOfferStatus(args[1:])
	default:
		fmt.Printf("unknown offer command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	name := fs.String("name", "", "full name")
	password := fs.String("password", "", "password")
	phone := fs.String("phone", "", "phone number (optional)")
	city := fs.String("city", "", "city (optional)")

	fs.Parse(args)

	if *email == "" || *name == "" || *password == "" {
		fmt.Println("Error: email, name, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"email":    *email,
		"name":     *name,
		"password": *password,
	}
	if *phone != "" {
		payload["phone"] = *phone
	}
	if *city != "" {
		payload["city"] = *city
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ User registered: %s\n", *email)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: email and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"email": *email, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *email)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/profile", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in (token expired?)")
		return
	}

	var profile map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&profile)
	fmt.Printf("✓ Logged in as: %v <%v>\n", profile["name"], profile["email"])
}

// Property commands
func listProperties(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	city := fs.String("city", "", "filter by city")
	propertyType := fs.String("type", "", "filter by property type")
	fs.Parse(args)

	q := url.Values{}
	if *city != "" {
		q.Set("city", *city)
	}
	if *propertyType != "" {
		q.Set("propertyType", *propertyType)
	}

	endpoint := getAPIURL() + "/properties"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	resp, err := http.Get(endpoint)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var properties []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&properties)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCITY\tTYPE\tPRICE")
	for _, p := range properties {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", p["id"], p["title"], p["city"], p["propertyType"], p["price"])
	}
	w.Flush()
}

func getProperty(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub property get <property-id>")
		return
	}

	resp, err := http.Get(getAPIURL() + "/properties/" + url.PathEscape(args[0]))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ %v\n", result)
		return
	}

	var p map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&p)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%v\n", p["id"])
	fmt.Fprintf(w, "Title:\t%v\n", p["title"])
	fmt.Fprintf(w, "Address:\t%v\n", p["address"])
	fmt.Fprintf(w, "City:\t%v\n", p["city"])
	fmt.Fprintf(w, "Type:\t%v\n", p["propertyType"])
	fmt.Fprintf(w, "Price:\t%v\n", p["price"])
	fmt.Fprintf(w, "Bedrooms:\t%v\n", p["bedrooms"])
	fmt.Fprintf(w, "Bathrooms:\t%v\n", p["bathrooms"])
	w.Flush()
}

func searchProperties(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "free-text query")
	city := fs.String("city", "", "filter by city")
	minPrice := fs.String("minPrice", "", "minimum price")
	maxPrice := fs.String("maxPrice", "", "maximum price")
	fs.Parse(args)

	q := url.Values{}
	if *query != "" {
		q.Set("query", *query)
	}
	if *city != "" {
		q.Set("city", *city)
	}
	if *minPrice != "" {
		q.Set("minPrice", *minPrice)
	}
	if *maxPrice != "" {
		q.Set("maxPrice", *maxPrice)
	}

	resp, err := http.Get(getAPIURL() + "/properties/search?" + q.Encode())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Results []map[string]interface{} `json:"results"`
		Count   int                      `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCITY\tPRICE")
	for _, p := range result.Results {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", p["id"], p["title"], p["city"], p["price"])
	}
	w.Flush()
	fmt.Printf("%d result(s)\n", result.Count)
}

func addProperty(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "listing title")
	address := fs.String("address", "", "street address")
	city := fs.String("city", "", "city")
	price := fs.Float64("price", 0, "asking price")
	propertyType := fs.String("type", "", "property type (Apartment, Villa, ...)")
	bedrooms := fs.Int("bedrooms", 0, "number of bedrooms")
	bathrooms := fs.Int("bathrooms", 0, "number of bathrooms")
	propertyID := fs.String("property-id", "", "human-readable listing code (optional)")

	fs.Parse(args)

	if *title == "" || *address == "" || *price == 0 {
		fmt.Println("Error: title, address, and price are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"title":        *title,
		"address":      *address,
		"city":         *city,
		"price":        *price,
		"propertyType": *propertyType,
		"bedrooms":     *bedrooms,
		"bathrooms":    *bathrooms,
	}
	if *propertyID != "" {
		payload["propertyId"] = *propertyID
	}

	if created, ok := postProperty(payload); ok {
		fmt.Printf("✓ Property created: %v\n", created["id"])
	}
}

// seedProperties loads a small demo catalogue so the API has something
// to browse on a fresh database.
func seedProperties(args []string) {
	_ = args
	catalogue := []map[string]interface{}{
		{
			"propertyId": "1", "title": "Luxury Apartment", "address": "Anna Nagar",
			"city": "Chennai", "price": 8500000, "propertyType": "Apartment",
			"bedrooms": 3, "bathrooms": 2,
			"description": "Spacious 3BHK apartment with modern amenities",
		},
		{
			"propertyId": "2", "title": "Modern Villa", "address": "Whitefield",
			"city": "Bengaluru", "price": 12000000, "propertyType": "Villa",
			"bedrooms": 4, "bathrooms": 3,
			"description": "Independent villa with private garden",
		},
		{
			"propertyId": "3", "title": "Penthouse", "address": "Banjara Hills",
			"city": "Hyderabad", "price": 15000000, "propertyType": "Penthouse",
			"bedrooms": 4, "bathrooms": 4,
			"description": "Top-floor penthouse with city views",
		},
		{
			"propertyId": "4", "title": "Cozy 2BHK", "address": "T Nagar",
			"city": "Chennai", "price": 5500000, "propertyType": "Apartment",
			"bedrooms": 2, "bathrooms": 2,
			"description": "Compact apartment close to the shopping district",
		},
	}

	created := 0
	for _, p := range catalogue {
		if _, ok := postProperty(p); ok {
			created++
		}
	}
	fmt.Printf("✓ Seeded %d/%d properties\n", created, len(catalogue))
}

func postProperty(payload map[string]interface{}) (map[string]interface{}, bool) {
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/properties", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode != 201 {
		fmt.Printf("✗ Property creation failed: %v\n", result)
		return nil, false
	}
	return result, true
}

// Offer commands
func createOffer(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	property := fs.String("property", "", "property identifier (listing code or id)")
	amount := fs.Float64("amount", 0, "offer amount")
	message := fs.String("message", "", "message to the seller (optional)")

	fs.Parse(args)

	if *property == "" || *amount == 0 {
		fmt.Println("Error: property and amount are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]interface{}{
		"property": *property,
		"amount":   *amount,
	}
	if *message != "" {
		payload["message"] = *message
	}

	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/offers", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Offer submitted: %v (status: %v)\n", result["id"], result["status"])
	} else {
		fmt.Printf("✗ Offer failed: %v\n", result)
	}
}

func listMyOffers(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/offers/my", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		var result map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&result)
		fmt.Printf("✗ %v\n", result)
		return
	}

	var offers []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&offers)
	printOfferTable(offers)
}

func listPropertyOffers(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: estatehub offer list <property-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/offers/"+url.PathEscape(args[0]), nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var offers []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&offers)
	printOfferTable(offers)
}

func updateOfferStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	offerID := fs.String("offer", "", "offer id")
	status := fs.String("set", "", "new status (PENDING, ACCEPTED, REJECTED)")

	fs.Parse(args)

	if *offerID == "" || *status == "" {
		fmt.Println("Error: offer and set are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"status": *status}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("PATCH", getAPIURL()+"/offers/"+url.PathEscape(*offerID)+"/status", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Offer %v is now %v\n", result["id"], result["status"])
	} else {
		fmt.Printf("✗ Status update failed: %v\n", result)
	}
}

func printOfferTable(offers []map[string]interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROPERTY\tAMOUNT\tSTATUS\tCREATED")
	for _, o := range offers {
		propertyTitle := ""
		if p, ok := o["property"].(map[string]interface{}); ok {
			propertyTitle = fmt.Sprintf("%v", p["title"])
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", o["id"], propertyTitle, o["amount"], o["status"], o["createdAt"])
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("ESTATEHUB_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.estatehub/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.estatehub", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`EstateHub CLI

Usage:
  estatehub <command> [options]

Commands:
  auth       User authentication (register, login, logout, who)
  property   Listing operations (list, get, search, add, seed)
  offer      Offer operations (create, mine, list, status)
  help       Show this help message

Environment Variables:
  ESTATEHUB_API    API endpoint (default: http://localhost:8080/api)

Examples:
  estatehub auth register -email buyer@example.com -name Buyer -password secret123
  estatehub auth login -email buyer@example.com -password secret123
  estatehub property seed
  estatehub property list -city Chennai
  estatehub offer create -property 2 -amount 5000000 -message "Interested"
  estatehub offer mine
`)
}
