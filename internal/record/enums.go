package record

// MediaType is the marketing channel a claim was spent on.
type MediaType string

const (
	MediaPrint            MediaType = "Print"
	MediaOutdoor          MediaType = "Outdoor"
	MediaPointOfPurchase  MediaType = "PointOfPurchase"
	MediaBroadcast        MediaType = "Broadcast"
	MediaEvents           MediaType = "Events"
	MediaDigital          MediaType = "Digital"
	MediaFacilityBranding MediaType = "FacilityBranding"
	MediaSponsorships     MediaType = "Sponsorships"
	MediaSignage          MediaType = "Signage"
	MediaVehicleWraps     MediaType = "VehicleWraps"
	MediaUnknown          MediaType = "Unknown"
)

// ActivityType is the concrete marketing activity within a media type.
type ActivityType string

const (
	ActivityDirectMail               ActivityType = "DirectMail"
	ActivityLocalAd                  ActivityType = "LocalAd"
	ActivityRegionalAd               ActivityType = "RegionalAd"
	ActivityHandouts                 ActivityType = "Handouts"
	ActivityBillboards               ActivityType = "Billboards"
	ActivitySignage                  ActivityType = "Signage"
	ActivityDealerDisplayAdvertising ActivityType = "DealerDisplayAdvertising"
	ActivityTelevision               ActivityType = "Television"
	ActivityRadio                    ActivityType = "Radio"
	ActivityTradeshows               ActivityType = "Tradeshows"
	ActivityExhibition               ActivityType = "Exhibition"
	ActivityEBlast                   ActivityType = "EBlast"
	ActivityMusicChannel             ActivityType = "MusicChannel"
	ActivityPaidListing              ActivityType = "PaidListing"
	ActivityOnlineDisplayAd          ActivityType = "OnlineDisplayAd"
	ActivityPaidSearch               ActivityType = "PaidSearch"
	ActivitySocialAd                 ActivityType = "SocialAd"
	ActivitySEO                      ActivityType = "SEO"
	ActivitySocialProgram            ActivityType = "SocialProgram"
	ActivityPaidMedia                ActivityType = "PaidMedia"
	ActivityCTV                      ActivityType = "CTV"
	ActivityKenect                   ActivityType = "Kenect"
	ActivityFacilityUpgrades         ActivityType = "FacilityUpgrades"
	ActivitySponsorship              ActivityType = "Sponsorship"
	ActivityDealerSignage            ActivityType = "DealerSignage"
	ActivityVehicleWrapsDecals       ActivityType = "VehicleWrapsDecals"
	ActivityUnknown                  ActivityType = "Unknown"
)

var mediaTypes = []MediaType{
	MediaPrint, MediaOutdoor, MediaPointOfPurchase, MediaBroadcast, MediaEvents, MediaDigital,
	MediaFacilityBranding, MediaSponsorships, MediaSignage, MediaVehicleWraps, MediaUnknown,
}

var activityTypes = []ActivityType{
	ActivityDirectMail, ActivityLocalAd, ActivityRegionalAd, ActivityHandouts,
	ActivityBillboards, ActivitySignage,
	ActivityDealerDisplayAdvertising,
	ActivityTelevision, ActivityRadio,
	ActivityTradeshows, ActivityExhibition,
	ActivityEBlast, ActivityMusicChannel, ActivityPaidListing, ActivityOnlineDisplayAd, ActivityPaidSearch,
	ActivitySocialAd, ActivitySEO, ActivitySocialProgram, ActivityPaidMedia, ActivityCTV, ActivityKenect,
	ActivityFacilityUpgrades,
	ActivitySponsorship,
	ActivityDealerSignage,
	ActivityVehicleWrapsDecals,
	ActivityUnknown,
}

// compatibleActivities lists the activities each media type permits besides Unknown.
var compatibleActivities = map[MediaType][]ActivityType{
	MediaPrint:            {ActivityDirectMail, ActivityLocalAd, ActivityRegionalAd, ActivityHandouts},
	MediaOutdoor:          {ActivityBillboards, ActivitySignage},
	MediaPointOfPurchase:  {ActivityDealerDisplayAdvertising},
	MediaBroadcast:        {ActivityTelevision, ActivityRadio},
	MediaEvents:           {ActivityTradeshows, ActivityExhibition},
	MediaDigital:          {ActivityEBlast, ActivityMusicChannel, ActivityPaidListing, ActivityOnlineDisplayAd, ActivityPaidSearch, ActivitySocialAd, ActivitySEO, ActivitySocialProgram, ActivityPaidMedia, ActivityCTV, ActivityKenect},
	MediaFacilityBranding: {ActivityFacilityUpgrades},
	MediaSponsorships:     {ActivitySponsorship},
	MediaSignage:          {ActivityDealerSignage},
	MediaVehicleWraps:     {ActivityVehicleWrapsDecals},
	MediaUnknown:          {},
}

// MediaTypes returns every media type in declaration order.
func MediaTypes() []MediaType {
	return append([]MediaType(nil), mediaTypes...)
}

// ActivityTypes returns every activity type in declaration order.
func ActivityTypes() []ActivityType {
	return append([]ActivityType(nil), activityTypes...)
}

// LookupMediaType matches s case-exactly against the canonical media type names.
// The boolean is false when s names no member.
func LookupMediaType(s string) (MediaType, bool) {
	for _, m := range mediaTypes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// ParseMediaType never fails: unmatched input becomes MediaUnknown.
func ParseMediaType(s string) MediaType {
	if m, ok := LookupMediaType(s); ok {
		return m
	}
	return MediaUnknown
}

// LookupActivityType matches s case-exactly against the canonical activity type names.
func LookupActivityType(s string) (ActivityType, bool) {
	for _, a := range activityTypes {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// ParseActivityType never fails: unmatched input becomes ActivityUnknown.
func ParseActivityType(s string) ActivityType {
	if a, ok := LookupActivityType(s); ok {
		return a
	}
	return ActivityUnknown
}

// AllowedActivities returns the activities permitted for m, always ending with ActivityUnknown.
func AllowedActivities(m MediaType) []ActivityType {
	allowed := append([]ActivityType(nil), compatibleActivities[m]...)
	return append(allowed, ActivityUnknown)
}

// Compatible reports whether activity a may be claimed under media type m.
func Compatible(m MediaType, a ActivityType) bool {
	if a == ActivityUnknown {
		return true
	}
	for _, allowed := range compatibleActivities[m] {
		if allowed == a {
			return true
		}
	}
	return false
}
