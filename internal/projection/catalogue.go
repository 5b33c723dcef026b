package projection

import "github.com/veritasworks/veritas-core/internal/models"

// def builds a catalogue entry with the shared defaults: active, 24h window.
func def(id, name string, cat models.PESTELCategory, sub, calc string, weight, warn, crit float64, keywords ...string) models.IndicatorDefinition {
	return models.IndicatorDefinition{
		ID:          id,
		Name:        name,
		Category:    cat,
		Subcategory: sub,
		Calculation: calc,
		BaseWeight:  weight,
		Thresholds:  models.IndicatorThresholds{Warning: warn, Critical: crit},
		Active:      true,
		Keywords:    keywords,
		WindowHours: 24,
	}
}

// Catalogue is the national indicator catalogue consumed by the projection
// engine. It is read-only after init.
var Catalogue = []models.IndicatorDefinition{
	// Political
	def("POL_STABILITY", "Political Stability", models.PESTELPolitical, "governance", "sentiment_volume", 0.9, 40, 25, "government", "stability", "coalition"),
	def("POL_UNREST", "Civil Unrest", models.PESTELPolitical, "unrest", "event_count", 0.9, 60, 80, "protest", "strike", "unrest", "riot"),
	def("POL_POLICY_CHANGE", "Policy Change Activity", models.PESTELPolitical, "policy", "event_count", 0.7, 55, 75, "policy", "reform", "gazette"),
	def("POL_ELECTION_PROXIMITY", "Election Proximity", models.PESTELPolitical, "elections", "calendar", 0.5, 60, 80, "election", "poll", "campaign"),
	def("POL_CABINET_CHANGES", "Cabinet Changes", models.PESTELPolitical, "governance", "event_count", 0.5, 50, 70, "cabinet", "minister", "reshuffle"),
	def("POL_CORRUPTION_NEWS", "Corruption Coverage", models.PESTELPolitical, "governance", "sentiment_volume", 0.4, 55, 75, "corruption", "bribery", "fraud"),
	def("POL_INTERNATIONAL_RELATIONS", "International Relations", models.PESTELPolitical, "foreign", "sentiment_volume", 0.5, 45, 30, "diplomatic", "bilateral", "sanctions"),
	def("POL_TRADE_POLICY", "Trade Policy Pressure", models.PESTELPolitical, "trade", "event_count", 0.7, 55, 75, "tariff", "import ban", "export"),
	def("POL_SECURITY_SITUATION", "Security Situation", models.PESTELPolitical, "security", "event_count", 0.8, 55, 80, "curfew", "security", "emergency"),
	def("POL_PUBLIC_SECTOR_STRIKES", "Public Sector Strikes", models.PESTELPolitical, "unrest", "event_count", 0.7, 50, 75, "strike", "union", "walkout"),
	def("POL_PROVINCIAL_TENSION", "Provincial Tension", models.PESTELPolitical, "regional", "sentiment_volume", 0.4, 55, 75, "provincial", "devolution"),
	def("POL_LEGISLATIVE_GRIDLOCK", "Legislative Gridlock", models.PESTELPolitical, "policy", "event_count", 0.4, 55, 70, "parliament", "bill", "vote"),
	def("POL_PROTEST_FREQUENCY", "Protest Frequency", models.PESTELPolitical, "unrest", "event_count", 0.7, 55, 75, "protest", "demonstration"),
	def("POL_GOVERNANCE_QUALITY", "Governance Quality", models.PESTELPolitical, "governance", "sentiment_volume", 0.5, 40, 25),
	def("POL_MEDIA_FREEDOM", "Media Freedom Pressure", models.PESTELPolitical, "governance", "sentiment_volume", 0.3, 55, 75, "censorship", "press"),
	def("POL_REGIONAL_CONFLICT", "Regional Conflict Spillover", models.PESTELPolitical, "foreign", "event_count", 0.5, 50, 75, "conflict", "border"),

	// Economic
	def("ECON_INFLATION", "Inflation Pressure", models.PESTELEconomic, "prices", "value_extraction", 1.0, 60, 80, "inflation", "ccpi", "price index"),
	def("ECON_FOOD_PRICES", "Food Price Level", models.PESTELEconomic, "prices", "value_extraction", 0.9, 60, 80, "food prices", "rice", "vegetables"),
	def("ECON_FUEL_PRICE", "Fuel Price Level", models.PESTELEconomic, "energy", "value_extraction", 1.0, 60, 80, "fuel", "petrol", "diesel", "kerosene"),
	def("ECON_CURRENCY_DEPRECIATION", "Currency Depreciation", models.PESTELEconomic, "monetary", "value_extraction", 0.9, 55, 75, "rupee", "exchange rate", "depreciation"),
	def("ECON_INTEREST_RATES", "Interest Rate Level", models.PESTELEconomic, "monetary", "value_extraction", 0.8, 60, 80, "interest rate", "policy rate", "awplr"),
	def("ECON_FOREX_RESERVES", "Foreign Reserves Stress", models.PESTELEconomic, "monetary", "value_extraction", 0.8, 55, 75, "reserves", "imf", "balance of payments"),
	def("ECON_UNEMPLOYMENT", "Unemployment Pressure", models.PESTELEconomic, "labour", "value_extraction", 0.7, 55, 75, "unemployment", "jobless", "layoffs"),
	def("ECON_WAGE_PRESSURE", "Wage Pressure", models.PESTELEconomic, "labour", "sentiment_volume", 0.6, 55, 75, "wage", "salary", "minimum wage"),
	def("ECON_GDP_OUTLOOK", "GDP Outlook", models.PESTELEconomic, "growth", "sentiment_volume", 0.7, 40, 25, "gdp", "growth", "recession"),
	def("ECON_EXPORT_PERFORMANCE", "Export Performance", models.PESTELEconomic, "trade", "sentiment_volume", 0.7, 40, 25, "exports", "apparel", "tea"),
	def("ECON_IMPORT_RESTRICTIONS", "Import Restriction Pressure", models.PESTELEconomic, "trade", "event_count", 0.8, 55, 80, "import ban", "import restriction", "licence"),
	def("ECON_TOURISM_ARRIVALS", "Tourism Arrivals", models.PESTELEconomic, "tourism", "value_extraction", 0.6, 40, 25, "tourism", "arrivals", "hotel occupancy"),
	def("ECON_REMITTANCES", "Worker Remittances", models.PESTELEconomic, "monetary", "value_extraction", 0.6, 40, 25, "remittances"),
	def("ECON_CREDIT_AVAILABILITY", "Credit Availability", models.PESTELEconomic, "finance", "sentiment_volume", 0.7, 40, 25, "credit", "lending", "loans"),
	def("ECON_BUSINESS_CONFIDENCE", "Business Confidence", models.PESTELEconomic, "sentiment", "sentiment_volume", 0.7, 40, 25, "business confidence", "pmi"),
	def("ECON_CONSUMER_SPENDING", "Consumer Spending", models.PESTELEconomic, "demand", "sentiment_volume", 0.8, 40, 25, "consumer", "retail sales", "spending"),
	def("ECON_TAX_CHANGES", "Tax Change Pressure", models.PESTELEconomic, "fiscal", "event_count", 0.7, 55, 75, "tax", "vat", "levy"),
	def("ECON_DEBT_STRESS", "Sovereign Debt Stress", models.PESTELEconomic, "fiscal", "sentiment_volume", 0.7, 55, 80, "debt", "default", "restructuring"),
	def("ECON_STOCK_MARKET", "Stock Market Direction", models.PESTELEconomic, "markets", "value_extraction", 0.4, 45, 30, "cse", "stock", "index"),
	def("ECON_CONSTRUCTION_ACTIVITY", "Construction Activity", models.PESTELEconomic, "growth", "sentiment_volume", 0.4, 40, 25, "construction", "cement"),
	def("ECON_ENERGY_TARIFF", "Energy Tariff Pressure", models.PESTELEconomic, "energy", "event_count", 0.8, 55, 80, "electricity tariff", "power bill"),
	def("ECON_SME_DISTRESS", "SME Distress", models.PESTELEconomic, "finance", "sentiment_volume", 0.6, 55, 75, "sme", "small business", "closure"),

	// Social
	def("SOC_PUBLIC_SENTIMENT", "Public Sentiment", models.PESTELSocial, "sentiment", "sentiment_volume", 0.7, 40, 25),
	def("SOC_MIGRATION_OUTFLOW", "Skilled Migration Outflow", models.PESTELSocial, "labour", "sentiment_volume", 0.8, 55, 75, "migration", "brain drain", "emigration"),
	def("SOC_HEALTH_EMERGENCY", "Health Emergency Level", models.PESTELSocial, "health", "event_count", 0.9, 50, 75, "epidemic", "outbreak", "dengue", "hospital"),
	def("SOC_EDUCATION_DISRUPTION", "Education Disruption", models.PESTELSocial, "education", "event_count", 0.4, 55, 75, "school", "university", "exams"),
	def("SOC_CRIME_RATE", "Crime Coverage", models.PESTELSocial, "safety", "event_count", 0.5, 55, 75, "crime", "robbery", "violence"),
	def("SOC_LABOUR_DISPUTES", "Labour Disputes", models.PESTELSocial, "labour", "event_count", 0.8, 55, 75, "labour dispute", "trade union", "strike"),
	def("SOC_COST_OF_LIVING", "Cost of Living Strain", models.PESTELSocial, "welfare", "sentiment_volume", 0.9, 60, 80, "cost of living", "hardship"),
	def("SOC_FOOD_SECURITY", "Food Security", models.PESTELSocial, "welfare", "sentiment_volume", 0.8, 55, 80, "food security", "shortage", "malnutrition"),
	def("SOC_CONSUMER_TRUST", "Consumer Trust", models.PESTELSocial, "sentiment", "sentiment_volume", 0.6, 40, 25),
	def("SOC_POPULATION_MOVEMENT", "Population Displacement", models.PESTELSocial, "welfare", "event_count", 0.6, 50, 75, "displaced", "evacuation", "relief camp"),
	def("SOC_SOCIAL_MEDIA_VOLATILITY", "Social Media Volatility", models.PESTELSocial, "sentiment", "sentiment_volume", 0.4, 55, 75, "viral", "boycott"),
	def("SOC_RELIGIOUS_TENSION", "Communal Tension", models.PESTELSocial, "cohesion", "event_count", 0.6, 50, 75, "communal", "ethnic", "religious"),
	def("SOC_WORKFORCE_SKILL_GAP", "Workforce Skill Gap", models.PESTELSocial, "labour", "sentiment_volume", 0.5, 55, 75, "skills", "vacancies", "training"),
	def("SOC_URBANIZATION_STRESS", "Urbanization Stress", models.PESTELSocial, "welfare", "sentiment_volume", 0.3, 55, 75, "housing", "traffic"),
	def("SOC_PUBLIC_SERVICES", "Public Service Quality", models.PESTELSocial, "welfare", "sentiment_volume", 0.5, 40, 25, "public service", "queue"),
	def("SOC_YOUTH_UNREST", "Youth Unrest", models.PESTELSocial, "cohesion", "event_count", 0.5, 55, 75, "student protest", "youth"),

	// Technological
	def("TECH_INTERNET_DISRUPTION", "Internet Disruption", models.PESTELTechnological, "connectivity", "event_count", 0.8, 50, 75, "internet outage", "connectivity", "undersea cable"),
	def("TECH_POWER_GRID", "Power Grid Reliability", models.PESTELTechnological, "utilities", "event_count", 1.0, 55, 80, "power cut", "blackout", "load shedding", "grid"),
	def("TECH_TELECOM_QUALITY", "Telecom Service Quality", models.PESTELTechnological, "connectivity", "sentiment_volume", 0.5, 45, 30, "telecom", "mobile network"),
	def("TECH_CYBER_INCIDENTS", "Cyber Incident Level", models.PESTELTechnological, "security", "event_count", 0.7, 50, 75, "cyber attack", "data breach", "ransomware"),
	def("TECH_DIGITAL_PAYMENTS", "Digital Payment Adoption", models.PESTELTechnological, "fintech", "sentiment_volume", 0.4, 40, 25, "digital payment", "lankaqr"),
	def("TECH_AUTOMATION_TREND", "Automation Adoption", models.PESTELTechnological, "industry", "sentiment_volume", 0.3, 40, 25, "automation", "robotics"),
	def("TECH_IT_SECTOR_HEALTH", "IT Sector Health", models.PESTELTechnological, "industry", "sentiment_volume", 0.5, 40, 25, "it sector", "software exports"),
	def("TECH_EQUIPMENT_IMPORTS", "Equipment Import Flow", models.PESTELTechnological, "industry", "sentiment_volume", 0.5, 55, 75, "machinery", "spare parts"),
	def("TECH_FUEL_DISTRIBUTION_SYSTEM", "Fuel Distribution System", models.PESTELTechnological, "utilities", "event_count", 0.7, 55, 80, "fuel queue", "fuel pass", "distribution"),
	def("TECH_TRANSPORT_SYSTEMS", "Transport System Status", models.PESTELTechnological, "transport", "event_count", 0.7, 55, 75, "railway", "bus service", "port congestion"),
	def("TECH_DATA_INFRASTRUCTURE", "Data Infrastructure", models.PESTELTechnological, "connectivity", "sentiment_volume", 0.4, 45, 30, "data center", "cloud"),
	def("TECH_RESEARCH_ACTIVITY", "Research Activity", models.PESTELTechnological, "innovation", "sentiment_volume", 0.2, 40, 25, "research", "innovation"),
	def("TECH_EMERGING_TECH_POLICY", "Emerging Tech Policy", models.PESTELTechnological, "policy", "event_count", 0.3, 50, 70, "ai policy", "digital act"),
	def("TECH_LEGACY_SYSTEM_RISK", "Legacy System Risk", models.PESTELTechnological, "industry", "sentiment_volume", 0.3, 55, 75),

	// Environmental
	def("ENV_FLOOD_RISK", "Flood Risk", models.PESTELEnvironmental, "hazard", "event_count", 1.0, 55, 80, "flood", "inundation", "monsoon"),
	def("ENV_DROUGHT_CONDITIONS", "Drought Conditions", models.PESTELEnvironmental, "hazard", "event_count", 0.9, 55, 80, "drought", "water shortage", "dry spell"),
	def("ENV_CYCLONE_ACTIVITY", "Cyclone Activity", models.PESTELEnvironmental, "hazard", "event_count", 0.9, 50, 80, "cyclone", "storm", "gale"),
	def("ENV_LANDSLIDE_RISK", "Landslide Risk", models.PESTELEnvironmental, "hazard", "event_count", 0.8, 55, 80, "landslide", "earth slip"),
	def("ENV_DISASTER_IMPACT", "Active Disaster Impact", models.PESTELEnvironmental, "hazard", "event_count", 1.0, 50, 75, "disaster", "relief", "damage"),
	def("ENV_RAINFALL_ANOMALY", "Rainfall Anomaly", models.PESTELEnvironmental, "climate", "value_extraction", 0.6, 55, 75, "rainfall", "precipitation"),
	def("ENV_TEMPERATURE_ANOMALY", "Temperature Anomaly", models.PESTELEnvironmental, "climate", "value_extraction", 0.4, 55, 75, "heat wave", "temperature"),
	def("ENV_WATER_SUPPLY", "Water Supply Status", models.PESTELEnvironmental, "resources", "event_count", 0.8, 55, 80, "water supply", "water cut"),
	def("ENV_AIR_QUALITY", "Air Quality", models.PESTELEnvironmental, "pollution", "value_extraction", 0.4, 55, 75, "air quality", "haze"),
	def("ENV_AGRICULTURAL_CONDITIONS", "Agricultural Conditions", models.PESTELEnvironmental, "agriculture", "sentiment_volume", 0.8, 45, 30, "harvest", "paddy", "crop"),
	def("ENV_FISHERIES_CONDITIONS", "Fisheries Conditions", models.PESTELEnvironmental, "agriculture", "sentiment_volume", 0.4, 45, 30, "fisheries", "fishing ban"),
	def("ENV_COASTAL_EROSION", "Coastal Erosion", models.PESTELEnvironmental, "climate", "event_count", 0.3, 55, 75, "erosion", "sea level"),
	def("ENV_DEFORESTATION", "Deforestation Pressure", models.PESTELEnvironmental, "resources", "event_count", 0.3, 55, 75, "deforestation", "land clearing"),
	def("ENV_WASTE_MANAGEMENT", "Waste Management Stress", models.PESTELEnvironmental, "pollution", "event_count", 0.3, 55, 75, "garbage", "waste"),
	def("ENV_EPIDEMIC_VECTOR", "Vector-Borne Disease Conditions", models.PESTELEnvironmental, "health", "event_count", 0.6, 55, 75, "dengue", "mosquito"),
	def("ENV_WILDLIFE_CONFLICT", "Wildlife Conflict", models.PESTELEnvironmental, "agriculture", "event_count", 0.2, 55, 75, "elephant", "crop damage"),
	def("ENV_CLIMATE_POLICY", "Climate Policy Activity", models.PESTELEnvironmental, "policy", "event_count", 0.3, 50, 70, "climate", "emissions"),

	// Legal
	def("LEG_REGULATORY_CHANGES", "Regulatory Change Activity", models.PESTELLegal, "regulation", "event_count", 0.9, 55, 75, "regulation", "directive", "circular"),
	def("LEG_TAX_LAW_CHANGES", "Tax Law Changes", models.PESTELLegal, "taxation", "event_count", 0.8, 55, 75, "tax law", "inland revenue"),
	def("LEG_LABOUR_LAW_CHANGES", "Labour Law Changes", models.PESTELLegal, "labour", "event_count", 0.7, 55, 75, "labour law", "employment act"),
	def("LEG_IMPORT_EXPORT_RULES", "Import/Export Rule Changes", models.PESTELLegal, "trade", "event_count", 0.9, 55, 80, "customs", "import control", "export regulation"),
	def("LEG_LICENSING_REQUIREMENTS", "Licensing Requirements", models.PESTELLegal, "regulation", "event_count", 0.6, 55, 75, "licence", "permit", "approval"),
	def("LEG_COURT_BACKLOG", "Court Backlog", models.PESTELLegal, "judiciary", "sentiment_volume", 0.3, 55, 75, "court", "case backlog"),
	def("LEG_CONTRACT_ENFORCEMENT", "Contract Enforcement Quality", models.PESTELLegal, "judiciary", "sentiment_volume", 0.5, 45, 30, "contract", "enforcement"),
	def("LEG_PROPERTY_RIGHTS", "Property Rights Climate", models.PESTELLegal, "judiciary", "sentiment_volume", 0.4, 45, 30, "land rights", "property"),
	def("LEG_CONSUMER_PROTECTION", "Consumer Protection Activity", models.PESTELLegal, "regulation", "event_count", 0.5, 50, 70, "consumer affairs", "price control"),
	def("LEG_FINANCIAL_REGULATION", "Financial Regulation Activity", models.PESTELLegal, "finance", "event_count", 0.7, 55, 75, "central bank directive", "banking act"),
	def("LEG_DATA_PROTECTION", "Data Protection Enforcement", models.PESTELLegal, "regulation", "event_count", 0.4, 50, 70, "data protection", "privacy"),
	def("LEG_ENVIRONMENTAL_COMPLIANCE", "Environmental Compliance Pressure", models.PESTELLegal, "regulation", "event_count", 0.4, 55, 75, "environmental clearance", "cea"),
	def("LEG_ANTICORRUPTION_ENFORCEMENT", "Anti-Corruption Enforcement", models.PESTELLegal, "judiciary", "event_count", 0.4, 50, 70, "bribery commission", "asset declaration"),
	def("LEG_EMERGENCY_REGULATIONS", "Emergency Regulations", models.PESTELLegal, "regulation", "event_count", 0.8, 50, 80, "emergency regulation", "gazette"),
	def("LEG_SECTOR_COMPLIANCE_DEADLINES", "Sector Compliance Deadlines", models.PESTELLegal, "regulation", "calendar", 0.5, 55, 75, "compliance deadline"),
}

var catalogueByID = func() map[string]models.IndicatorDefinition {
	m := make(map[string]models.IndicatorDefinition, len(Catalogue))
	for _, d := range Catalogue {
		m[d.ID] = d
	}
	return m
}()

// Definition looks up a catalogue entry by indicator id.
func Definition(id string) (models.IndicatorDefinition, bool) {
	d, ok := catalogueByID[id]
	return d, ok
}

// DefinitionsByCategory returns the active catalogue entries for one PESTEL
// category.
func DefinitionsByCategory(cat models.PESTELCategory) []models.IndicatorDefinition {
	var out []models.IndicatorDefinition
	for _, d := range Catalogue {
		if d.Active && d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}
