package service

// ROIInputs are the assumptions behind the revenue-leakage estimate.
// Percentages are whole numbers (60 means 60%).
type ROIInputs struct {
	TotalCalls        float64 `json:"total_calls"` // inbound calls per day
	AfterHoursPercent float64 `json:"after_hours_percent"`
	LeadQualityRate   float64 `json:"lead_quality_rate"`
	LeadToTourRate    float64 `json:"lead_to_tour_rate"`
	TourToLeaseRate   float64 `json:"tour_to_lease_rate"`
	AverageRent       float64 `json:"average_rent"`
	AverageStayYears  float64 `json:"average_stay_years"`
}

// ROIResults carries every intermediate figure of the leakage estimate so
// the caller can render the full breakdown
type ROIResults struct {
	MonthlyMissedCalls float64 `json:"monthly_missed_calls"`
	QualifiedLeads     float64 `json:"qualified_leads"`
	ToursLost          float64 `json:"tours_lost"`
	LeasesLost         float64 `json:"leases_lost"`
	MonthlyLoss        float64 `json:"monthly_loss"`
	AnnualLoss         float64 `json:"annual_loss"`
	LifetimeLoss       float64 `json:"lifetime_loss"`
}

// DefaultROIInputs returns the calculator's prefilled assumptions
func DefaultROIInputs() ROIInputs {
	return ROIInputs{
		TotalCalls:        20,
		AfterHoursPercent: 60,
		LeadQualityRate:   20,
		LeadToTourRate:    25,
		TourToLeaseRate:   35,
		AverageRent:       1500,
		AverageStayYears:  2,
	}
}

// CalculateRevenueLeakage estimates revenue lost to unanswered after-hours
// calls: missed calls funnel down through lead quality, tour and lease
// conversion rates, then multiply out to monthly, annual and tenancy-
// lifetime dollar amounts.
func CalculateRevenueLeakage(in ROIInputs) ROIResults {
	dailyAfterHoursCalls := in.TotalCalls * (in.AfterHoursPercent / 100)
	monthlyMissedCalls := dailyAfterHoursCalls * 30
	qualifiedLeadsLost := monthlyMissedCalls * (in.LeadQualityRate / 100)
	toursLost := qualifiedLeadsLost * (in.LeadToTourRate / 100)
	leasesLost := toursLost * (in.TourToLeaseRate / 100)
	monthlyRevenueLoss := leasesLost * in.AverageRent
	annualImpact := monthlyRevenueLoss * 12
	lifetimeValueLoss := annualImpact * in.AverageStayYears

	return ROIResults{
		MonthlyMissedCalls: monthlyMissedCalls,
		QualifiedLeads:     qualifiedLeadsLost,
		ToursLost:          toursLost,
		LeasesLost:         leasesLost,
		MonthlyLoss:        monthlyRevenueLoss,
		AnnualLoss:         annualImpact,
		LifetimeLoss:       lifetimeValueLoss,
	}
}
