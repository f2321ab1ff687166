package constant

// AsciiArtLogo is the banner printed above the root command help.
const AsciiArtLogo = `
 _ __ ___   __ _ _ __   __ _  __ _  __| | _____  __
| '_ ' _ \ / _' | '_ \ / _' |/ _' |/ _' |/ _ \ \/ /
| | | | | | (_| | | | | (_| | (_| | (_| |  __/>  <
|_| |_| |_|\__,_|_| |_|\__, |\__,_|\__,_|\___/_/\_\
                       |___/`
