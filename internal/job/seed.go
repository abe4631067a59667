// Package job drives an enrichment batch end to end: seed leads, run
// the pool, summarize, persist the report.
package job

import (
	"fmt"

	"github.com/sells-group/osint-enrich/internal/model"
)

// archetypeBlock is how many consecutive lead ids share one archetype
// before seeding rotates to the next.
const archetypeBlock = 200

type seedCompany struct {
	name    string
	domain  string
	country string
}

type archetype struct {
	industry    string
	firstPrefix string
	lastName    string
	localPrefix string
	companies   []seedCompany
}

var archetypes = []archetype{
	{
		industry: "Technology", firstPrefix: "Tech", lastName: "Developer", localPrefix: "contact",
		companies: []seedCompany{
			{"TechStartup Inc", "techstartup.com", "United States"},
			{"InnovateCorp", "innovatecorp.com", "Canada"},
			{"AI Platform Co", "aiplatform.com", "United Kingdom"},
			{"Cloud Solutions", "cloudsolutions.com", "Netherlands"},
			{"Cybersecurity Corp", "cybersec.com", "Israel"},
			{"FinTech Innovations", "fintech.com", "Switzerland"},
			{"IoT Solutions", "iotsolutions.com", "Australia"},
			{"Robotics Corp", "robotics.com", "Germany"},
		},
	},
	{
		industry: "Marketing", firstPrefix: "Marketing", lastName: "Specialist", localPrefix: "hello",
		companies: []seedCompany{
			{"Digital Marketing Pro", "digitalmarketing.com", "United States"},
			{"Creative Agency", "creativeagency.com", "Canada"},
			{"Brand Builders", "brandbuilders.com", "Australia"},
			{"SEO Specialists", "seospecialists.com", "Netherlands"},
			{"Content Creators", "contentcreators.com", "Germany"},
			{"Growth Hacking", "growthhacking.com", "United Kingdom"},
			{"Lead Generation", "leadgen.com", "Sweden"},
			{"B2B Marketing", "b2bmarketing.com", "Singapore"},
		},
	},
	{
		industry: "E-commerce", firstPrefix: "Ecom", lastName: "Manager", localPrefix: "support",
		companies: []seedCompany{
			{"Online Store Pro", "onlinestore.com", "United States"},
			{"Dropshipping Co", "dropshipping.com", "Canada"},
			{"Shopify Experts", "shopifyexperts.com", "United Kingdom"},
			{"Print on Demand", "printondemand.com", "Netherlands"},
			{"Subscription Box", "subscriptionbox.com", "Sweden"},
			{"DTC Brands", "dtcbrands.com", "Switzerland"},
			{"Marketplace", "marketplace.com", "Sweden"},
			{"Social Commerce", "socialcommerce.com", "Israel"},
		},
	},
	{
		industry: "Consulting", firstPrefix: "Consultant", lastName: "Advisor", localPrefix: "info",
		companies: []seedCompany{
			{"Business Consultants", "businessconsultants.com", "United States"},
			{"Strategy Advisors", "strategyadvisors.com", "Canada"},
			{"Management Consulting", "managementconsulting.com", "Australia"},
			{"Financial Advisors", "financialadvisors.com", "United Kingdom"},
			{"IT Consulting", "itconsulting.com", "Sweden"},
			{"Risk Management", "riskmanagement.com", "United States"},
			{"Supply Chain", "supplychain.com", "Australia"},
			{"AI Strategy", "aistrategy.com", "Singapore"},
		},
	},
	{
		industry: "Real Estate", firstPrefix: "RealEstate", lastName: "Agent", localPrefix: "sales",
		companies: []seedCompany{
			{"Property Management Pro", "propertymanagement.com", "United States"},
			{"Real Estate Investment", "realestateinvestment.com", "Canada"},
			{"Commercial Real Estate", "commercialrealestate.com", "Australia"},
			{"Residential Sales", "residentialsales.com", "United Kingdom"},
			{"Property Development", "propertydevelopment.com", "Germany"},
			{"Real Estate Brokerage", "realestatebrokerage.com", "Canada"},
			{"Property Technology", "propertytechnology.com", "Israel"},
			{"Real Estate Services", "realestateservices.com", "Switzerland"},
		},
	},
}

// SeedLeads generates n deterministic sandbox leads. Ids start at 1 and
// the same n always yields the same leads.
func SeedLeads(n int) []model.Lead {
	if n <= 0 {
		return nil
	}
	leads := make([]model.Lead, 0, n)
	for i := 1; i <= n; i++ {
		arch := archetypes[((i-1)/archetypeBlock)%len(archetypes)]
		company := arch.companies[(i-1)%len(arch.companies)]
		leads = append(leads, model.Lead{
			ID:        int64(i),
			Email:     fmt.Sprintf("%s%d@%s", arch.localPrefix, i, company.domain),
			FirstName: fmt.Sprintf("%s%d", arch.firstPrefix, i),
			LastName:  arch.lastName,
			Company:   company.name,
			Country:   company.country,
			Source:    "sandbox",
			Industry:  arch.industry,
		})
	}
	return leads
}
