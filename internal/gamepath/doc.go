// Package gamepath locates the audio source for a run.
//
// Auto mode finds the Steam install of Grand Theft Auto V through the
// client's registry entry and the usual per-OS install locations, follows
// libraryfolders.vdf into secondary libraries, and enumerates the radio
// archives in the base game and its DLC packs. Manual mode validates a
// user-supplied directory of pre-extracted station folders instead.
//
// Resolution only reads. Nothing here touches the game installation.
package gamepath
